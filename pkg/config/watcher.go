package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/openfroyo/lzconfig/pkg/telemetry"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits after the last change
// before reloading.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc receives the result of every reload. Exactly one of cfg and
// err is non-nil.
type ChangeFunc func(cfg *GlobalConfig, err error)

// Watcher reloads global-config.yaml from a directory whenever it changes.
type Watcher struct {
	dir      string
	loader   *Loader
	onChange ChangeFunc
	debounce time.Duration
	metrics  *telemetry.Metrics
	logger   zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the reload delay.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadMetrics counts reloads.
func WithReloadMetrics(m *telemetry.Metrics) WatcherOption {
	return func(w *Watcher) {
		w.metrics = m
	}
}

// NewWatcher creates a watcher for dir. Call Start to begin watching.
func NewWatcher(dir string, loader *Loader, onChange ChangeFunc, opts ...WatcherOption) *Watcher {
	if loader == nil {
		loader = NewLoader()
	}
	w := &Watcher{
		dir:      dir,
		loader:   loader,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   loader.logger.With().Str("component", "config-watcher").Str("dir", dir).Logger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching in the background until ctx is cancelled or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		return fmt.Errorf("watcher already started")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors often replace files, so watch the directory rather than the file.
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.watcher = fw
	w.done = make(chan struct{})
	go w.processEvents(ctx, fw, w.done)

	w.logger.Info().Dur("debounce", w.debounce).Msg("Started watching configuration")
	return nil
}

// Reload loads the configuration now and reports it to the callback.
func (w *Watcher) Reload(ctx context.Context) {
	cfg, err := w.loader.LoadFromDirectory(ctx, w.dir)
	if err != nil {
		w.metrics.RecordReload(telemetry.ResultRejected)
		w.logger.Warn().Err(err).Msg("Configuration reload rejected")
	} else {
		w.metrics.RecordReload(telemetry.ResultValid)
		w.logger.Info().Str("home_region", cfg.HomeRegion).Msg("Configuration reloaded")
	}
	if w.onChange != nil {
		w.onChange(cfg, err)
	}
}

func (w *Watcher) processEvents(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return

		case <-done:
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != FileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("Configuration file changed")

			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				w.Reload(ctx)
			})
			w.mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil {
		return nil
	}
	close(w.done)
	err := w.watcher.Close()
	w.watcher = nil
	return err
}
