package release

import (
	"github.com/spf13/afero"

	"github.com/Iron-Ham/smrelease/internal/errors"
	"github.com/Iron-Ham/smrelease/internal/logging"
	"github.com/Iron-Ham/smrelease/internal/sentry"
)

// Options configures a Plugin. It is copied at construction and never
// modified afterwards.
type Options struct {
	AuthToken    string
	Organization string
	Project      string
	Version      string

	// URL is the tracking service API root. Empty means sentry.DefaultBaseURL.
	URL string

	// DeleteSourcemaps removes every emitted *.map file once the build is done.
	DeleteSourcemaps bool

	// FilenameTransform maps an emitted asset name to the release file name.
	// Nil uploads under the asset name.
	FilenameTransform func(string) string

	// UploadConcurrency caps the number of uploads in flight. Zero or
	// negative is unbounded.
	UploadConcurrency int
}

// Validate checks the required fields in a fixed order and reports the
// first one missing.
func (o Options) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"authToken", o.AuthToken},
		{"organization", o.Organization},
		{"project", o.Project},
		{"version", o.Version},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.NewConfigurationError(r.field, errors.ErrMissingOption)
		}
	}
	return nil
}

// remoteName returns the release file name for an emitted asset.
func (o Options) remoteName(name string) string {
	if o.FilenameTransform == nil {
		return name
	}
	return o.FilenameTransform(name)
}

// Option configures optional Plugin collaborators.
type Option func(*Plugin)

// WithClient replaces the HTTP client built from Options.
func WithClient(c sentry.ReleaseClient) Option {
	return func(p *Plugin) {
		p.client = c
	}
}

// WithFs sets the filesystem artifacts are read from and sourcemaps deleted on.
func WithFs(fs afero.Fs) Option {
	return func(p *Plugin) {
		p.fs = fs
	}
}

// WithLogger sets the logger for the plugin.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}
