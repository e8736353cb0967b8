// Package watch re-runs the release pipeline when a bundler in watch mode
// rewrites its asset manifest.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/smrelease/internal/logging"
)

// DefaultDebounce is how long the manifest must stay quiet before a change
// is reported. Bundlers typically write the manifest several times per build.
const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc handles one settled manifest change.
type ChangeFunc func(ctx context.Context) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. A zero or negative value is replaced
// with DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithInitialRun makes Run invoke the callback once before waiting for changes.
func WithInitialRun() Option {
	return func(w *Watcher) {
		w.initialRun = true
	}
}

// Watcher observes a single manifest file.
//
// The parent directory is watched rather than the file itself so that
// manifests replaced by rename are still seen.
type Watcher struct {
	path       string
	onChange   ChangeFunc
	debounce   time.Duration
	initialRun bool
	logger     *logging.Logger

	watcher *fsnotify.Watcher
	runs    int
	failed  int
}

// New starts observing path. Events that arrive before Run is called are
// kept and reported once Run starts.
func New(path string, onChange ChangeFunc, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.watcher = fw
	return w, nil
}

// Path returns the absolute path of the watched manifest.
func (w *Watcher) Path() string {
	return w.path
}

// Run reports settled changes until ctx is done, then closes the watcher.
// Callback failures are logged and do not stop the loop. Run returns nil on
// cancellation and an error only if the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	if w.initialRun {
		w.fire(ctx)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", "runs", w.runs, "failed", w.failed)
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("manifest event", "op", event.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			w.fire(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			w.logger.Warn("watcher error", "error", err.Error())
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	w.runs++
	start := time.Now()
	if err := w.onChange(ctx); err != nil {
		w.failed++
		w.logger.Error("manifest change handler failed", "run", w.runs, "error", err.Error())
		return
	}
	w.logger.Info("manifest change handled", "run", w.runs, "duration_ms", time.Since(start).Milliseconds())
}
