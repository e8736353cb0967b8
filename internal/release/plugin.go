package release

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/smrelease/internal/artifact"
	"github.com/Iron-Ham/smrelease/internal/build"
	"github.com/Iron-Ham/smrelease/internal/cleanup"
	"github.com/Iron-Ham/smrelease/internal/dispatch"
	"github.com/Iron-Ham/smrelease/internal/errors"
	"github.com/Iron-Ham/smrelease/internal/logging"
	"github.com/Iron-Ham/smrelease/internal/sentry"
)

// PluginName is the name the plugin taps build hooks under.
const PluginName = "SmReleasePlugin"

// Plugin creates a release and uploads its artifacts for every build cycle.
// A Plugin owns its client; several plugins may run side by side.
type Plugin struct {
	opts   Options
	client sentry.ReleaseClient
	fs     afero.Fs
	logger *logging.Logger

	// mu guards every Summary the plugin hands out. last is the summary of
	// the most recently started cycle.
	mu   sync.Mutex
	last *Summary
}

// New validates opts and creates a Plugin. A missing authToken,
// organization, project or version yields a *errors.ConfigurationError and
// no client is created.
func New(opts Options, options ...Option) (*Plugin, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &Plugin{opts: opts}
	for _, opt := range options {
		opt(p)
	}
	if p.client == nil {
		p.client = sentry.New(opts.AuthToken, sentry.WithBaseURL(opts.URL))
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.logger == nil {
		p.logger = logging.NopLogger()
	}
	p.logger = p.logger.WithRelease(opts.Organization, opts.Project, opts.Version)
	return p, nil
}

// Apply registers the plugin on a build's after-emit and done hooks.
func (p *Plugin) Apply(c build.Compiler) {
	c.TapAfterEmit(PluginName, p.AfterEmit)
	c.TapDone(PluginName, p.Done)
}

// AfterEmit selects the compilation's scripts and sourcemaps, creates the
// release, then uploads the selection. A release creation failure is
// returned as *errors.ReleaseCreationError before any upload is attempted.
// Upload failures are returned joined, one *errors.FileUploadError each.
//
// Every call records into its own Summary, so overlapping calls for
// different compilations never mix their results.
func (p *Plugin) AfterEmit(ctx context.Context, c build.Compilation) error {
	start := time.Now()
	sources := artifact.Select(c.Assets())

	sum := &Summary{
		RunID:        uuid.NewString(),
		Organization: p.opts.Organization,
		Project:      p.opts.Project,
		Version:      p.opts.Version,
		Selected:     make([]string, 0, len(sources)),
	}
	for _, src := range sources {
		sum.Selected = append(sum.Selected, src.Name)
	}
	log := p.logger.WithRun(sum.RunID).WithPhase("after_emit")

	p.mu.Lock()
	p.last = sum
	p.mu.Unlock()
	defer p.record(sum, func(s *Summary) { s.Duration = time.Since(start) })

	log.Info("creating release", "artifacts", len(sources))
	if err := p.client.CreateRelease(ctx, p.opts.Organization, p.opts.Project, sentry.NewRelease{Version: p.opts.Version}); err != nil {
		log.Error("release creation failed", "error", err.Error())
		return errors.NewReleaseCreationError("create release failed", err).
			WithRelease(p.opts.Organization, p.opts.Project, p.opts.Version).
			WithRetryable(temporary(err))
	}
	p.record(sum, func(s *Summary) { s.Released = true })

	queue := dispatch.NewQueue()
	for _, src := range sources {
		queue.Push(p.uploadTask(sum, src, log))
	}
	res, err := dispatch.New(p.opts.UploadConcurrency, log).Run(ctx, queue)
	if err != nil {
		log.Error("upload failed",
			"uploaded", res.Succeeded,
			"failed", res.Failed,
			"skipped", queue.Remaining(),
			"error", err.Error(),
		)
		return err
	}

	log.Info("release published",
		"uploaded", res.Succeeded,
		"peak_concurrency", res.Peak,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (p *Plugin) uploadTask(sum *Summary, src artifact.Source, log *logging.Logger) dispatch.Task {
	return func(ctx context.Context) error {
		remote := p.opts.remoteName(src.Name)
		alog := log.WithArtifact(src.Name)

		if err := p.upload(ctx, src, remote); err != nil {
			alog.Warn("artifact upload failed", "remote", remote, "error", err.Error())
			p.record(sum, func(s *Summary) { s.Failed = append(s.Failed, src.Name) })
			return err
		}

		alog.Debug("artifact uploaded", "remote", remote)
		p.record(sum, func(s *Summary) { s.Uploaded = append(s.Uploaded, remote) })
		return nil
	}
}

func (p *Plugin) upload(ctx context.Context, src artifact.Source, remote string) error {
	f, err := p.fs.Open(src.Path)
	if err != nil {
		return errors.NewFileUploadError("open artifact", fmt.Errorf("%w: %w", errors.ErrArtifactUnreadable, err)).
			WithArtifact(src.Name, remote, src.Path)
	}
	defer func() { _ = f.Close() }()

	file := sentry.NewReleaseFile{Name: remote, File: f}
	if err := p.client.CreateReleaseFile(ctx, p.opts.Organization, p.opts.Project, p.opts.Version, file); err != nil {
		return errors.NewFileUploadError("upload release file", err).
			WithArtifact(src.Name, remote, src.Path).
			WithRetryable(temporary(err))
	}
	return nil
}

// Done deletes the emitted sourcemaps when DeleteSourcemaps is set. The
// first deletion failure is returned as *errors.CleanupError. Removed paths
// are recorded on the summary of the most recently started cycle.
func (p *Plugin) Done(ctx context.Context, stats build.Stats) error {
	if !p.opts.DeleteSourcemaps {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log := p.logger.WithPhase("done")
	removed, err := cleanup.Sourcemaps(p.fs, stats)
	p.update(func(s *Summary) { s.Removed = append(s.Removed, removed...) })
	if err != nil {
		log.Error("sourcemap cleanup failed", "removed", len(removed), "error", err.Error())
		return err
	}
	log.Info("sourcemaps deleted", "removed", len(removed))
	return nil
}

// LastSummary returns a copy of the summary of the most recently started
// cycle. Uploads still in flight for an earlier cycle are not reflected.
func (p *Plugin) LastSummary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Summary{}
	}
	return p.last.clone()
}

// update applies fn to the latest summary, starting one when no cycle ran yet.
func (p *Plugin) update(fn func(*Summary)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		p.last = &Summary{
			Organization: p.opts.Organization,
			Project:      p.opts.Project,
			Version:      p.opts.Version,
		}
	}
	fn(p.last)
}

func (p *Plugin) record(sum *Summary, fn func(*Summary)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(sum)
}

// temporary reports whether err advertises itself as transient.
func temporary(err error) bool {
	var t interface{ Temporary() bool }
	return errors.As(err, &t) && t.Temporary()
}
