package logconf

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/logctx"
)

// Watcher reloads a context's configuration when its config file changes.
// Changes are debounced, so an editor writing the file in several steps
// triggers a single reload.
type Watcher struct {
	path string
	ctx  *logctx.Context
	log  *zap.Logger

	watcher  *fsnotify.Watcher
	reloads  chan Reload
	done     chan struct{}
	stopOnce sync.Once
	debounce time.Duration
}

// Reload reports the outcome of one reload attempt.
type Reload struct {
	// Config is the applied configuration, nil when the reload failed.
	Config *Config

	// Err is the load or apply failure. The context keeps its previous
	// configuration when a reload fails.
	Err error

	// Time is when the reload finished.
	Time time.Time
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long to wait after the last change before
// reloading. Default: 100ms.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger for watcher diagnostics. The default discards
// them.
func WithLogger(log *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.log = log }
}

// NewWatcher creates a watcher that reapplies the configuration at path to
// c on every change. Call Start to begin watching and Stop to release the
// filesystem watcher.
func NewWatcher(path string, c *logctx.Context, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filesystem watcher: %w", err)
	}

	w := &Watcher{
		path:     path,
		ctx:      c,
		log:      zap.NewNop(),
		watcher:  fsw,
		reloads:  make(chan Reload, 10),
		done:     make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching for changes. The config file's directory is watched
// rather than the file itself, so atomic replaces (write to temp file, then
// rename over the config) are still observed.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go w.processEvents(ctx)

	return nil
}

// Stop stops the watcher and cleans up resources.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
	})
}

// Reloads returns the channel reload outcomes are delivered on. Outcomes
// are dropped when the channel is full.
func (w *Watcher) Reloads() <-chan Reload { return w.reloads }

func (w *Watcher) processEvents(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
				!event.Op.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("config change detected",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()),
			)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	result := Reload{Time: time.Now()}

	cfg, err := Load(w.path)
	if err == nil {
		err = Apply(w.ctx, cfg)
	}
	if err != nil {
		result.Err = err
		w.log.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
	} else {
		result.Config = cfg
		w.log.Info("config reloaded", zap.String("path", w.path))
	}

	select {
	case w.reloads <- result:
	default:
	}
}
