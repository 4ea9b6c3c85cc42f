package highlight

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/dshills/textstore/internal/logging"
)

// DefaultReloadDelay is how long ThemeWatcher waits after the last change
// before reloading. Editors often write a file in several steps.
const DefaultReloadDelay = 50 * time.Millisecond

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("theme watcher closed")

// ThemeWatcher reloads a theme file when it changes and installs the result
// in a Swappable resolver. A file that fails to load leaves the previous
// theme in place.
type ThemeWatcher struct {
	path     string
	registry *ThemeRegistry
	target   *Swappable
	delay    time.Duration
	logger   *log.Logger

	watcher *fsnotify.Watcher

	mu       sync.Mutex
	onReload func(*Theme, error)
	closed   bool
	done     chan struct{}
	wg       sync.WaitGroup
}

// WatcherOption configures a ThemeWatcher.
type WatcherOption func(*ThemeWatcher)

// WithReloadDelay sets the debounce delay.
func WithReloadDelay(d time.Duration) WatcherOption {
	return func(w *ThemeWatcher) {
		w.delay = d
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l *log.Logger) WatcherOption {
	return func(w *ThemeWatcher) {
		w.logger = l
	}
}

// OnReload registers a callback invoked after every reload attempt, with
// the new theme or the load error.
func OnReload(fn func(*Theme, error)) WatcherOption {
	return func(w *ThemeWatcher) {
		w.onReload = fn
	}
}

// WatchTheme loads the theme at path into target and starts watching it.
// reg resolves "extends" and receives every reloaded theme; it may be nil.
func WatchTheme(path string, reg *ThemeRegistry, target *Swappable, opts ...WatcherOption) (*ThemeWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &ThemeWatcher{
		path:     abs,
		registry: reg,
		target:   target,
		delay:    DefaultReloadDelay,
		logger:   logging.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	theme, err := LoadTheme(abs, reg)
	if err != nil {
		return nil, err
	}
	w.install(theme)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: saving by rename replaces the file's inode.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	w.watcher = fsw

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the watched theme file.
func (w *ThemeWatcher) Path() string {
	return w.path
}

func (w *ThemeWatcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.Reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher", "path", w.path, "err", err)
		}
	}
}

// Reload loads the theme file now.
func (w *ThemeWatcher) Reload() (*Theme, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrWatcherClosed
	}
	cb := w.onReload
	w.mu.Unlock()

	theme, err := LoadTheme(w.path, w.registry)
	if err != nil {
		w.logger.Warn("theme reload failed", "path", w.path, "err", err)
	} else {
		w.install(theme)
		w.logger.Debug("theme reloaded", "path", w.path, "theme", theme.Name)
	}
	if cb != nil {
		cb(theme, err)
	}
	return theme, err
}

func (w *ThemeWatcher) install(theme *Theme) {
	if w.registry != nil {
		w.registry.Register(theme)
	}
	w.target.Set(theme)
}

// Close stops watching. It is safe to call more than once.
func (w *ThemeWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
