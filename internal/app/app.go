// Package app wires configuration, styling and parser selection into text
// stores and manages the documents opened through them.
package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dshills/textstore/internal/config"
	"github.com/dshills/textstore/internal/engine/textstore"
	"github.com/dshills/textstore/internal/logging"
	"github.com/dshills/textstore/internal/renderer/highlight"
	"github.com/dshills/textstore/internal/syntax/backend"
	"github.com/dshills/textstore/internal/syntax/rules"
)

// Options configures the application. Non-empty fields override the
// configuration file.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// Config is used as is when set; ConfigPath is then ignored.
	Config *config.Config

	LogLevel string
	Backend  string
	Theme    string
	Deferred bool
}

// Application owns the shared pieces every document store uses.
type Application struct {
	mu sync.RWMutex

	config *config.Config
	logger *log.Logger

	themes   *highlight.ThemeRegistry
	theme    *highlight.Swappable // current theme, swapped on reload
	lua      *highlight.LuaResolver
	resolver highlight.AttributeResolver
	grammars *rules.Registry
	watcher  *highlight.ThemeWatcher

	documents *DocumentManager
	closed    atomic.Bool
}

// New creates an application and initializes its components.
func New(opts Options) (*Application, error) {
	app := &Application{}
	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *log.Logger {
	return app.logger
}

// Themes returns the theme registry.
func (app *Application) Themes() *highlight.ThemeRegistry {
	return app.themes
}

// Resolver returns the resolver stores style captures with.
func (app *Application) Resolver() highlight.AttributeResolver {
	return app.resolver
}

// Documents returns the document manager.
func (app *Application) Documents() *DocumentManager {
	return app.documents
}

// StoreOptions returns the options a store for filename is created with.
func (app *Application) StoreOptions(filename string) []textstore.Option {
	cfg := app.config
	opts := []textstore.Option{
		textstore.WithSelection(backend.Request{
			Backend:  cfg.Parser.Backend,
			Filename: filename,
			Language: cfg.Parser.Grammar,
			Grammars: app.grammars,
			Logger:   app.logger,
		}),
		textstore.WithResolver(app.resolver),
		textstore.WithLogger(app.logger),
		textstore.WithMaxUndoEntries(cfg.Store.MaxUndo),
	}
	if cfg.Highlight.Deferred {
		opts = append(opts, textstore.WithDeferredHighlighting())
	}
	return opts
}

// Open opens the file at path, or returns it if already open.
func (app *Application) Open(path string) (*Document, error) {
	if app.closed.Load() {
		return nil, ErrShutdown
	}
	return app.documents.Open(path, app.StoreOptions)
}

// OpenText creates an unsaved document holding text. name drives language
// detection and may be empty.
func (app *Application) OpenText(name, text string) (*Document, error) {
	if app.closed.Load() {
		return nil, ErrShutdown
	}
	return app.documents.Create(name, text, app.StoreOptions)
}

// WatchTheme reloads the configured theme file whenever it changes and
// rehighlights every open document. It does nothing without a theme file.
// onReload, when set, runs after each reload attempt.
func (app *Application) WatchTheme(onReload func(*highlight.Theme, error)) error {
	path := app.config.Highlight.ThemeFile
	if path == "" {
		return nil
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.watcher != nil {
		return nil
	}

	w, err := highlight.WatchTheme(path, app.themes, app.theme,
		highlight.WithWatcherLogger(app.logger),
		highlight.OnReload(func(t *highlight.Theme, err error) {
			if err == nil {
				app.rehighlightAll()
			}
			if onReload != nil {
				onReload(t, err)
			}
		}))
	if err != nil {
		return &InitError{Component: "theme watcher", Err: err}
	}
	app.watcher = w
	return nil
}

// rehighlightAll restyles every open document after a theme change.
func (app *Application) rehighlightAll() {
	for _, doc := range app.documents.All() {
		err := doc.Store.Rehighlight(context.Background())
		if err != nil && !errors.Is(err, textstore.ErrClosed) {
			app.logger.Warn("rehighlight failed", logging.FieldPath, doc.Path, logging.FieldError, err)
		}
	}
}

// Shutdown stops the theme watcher and closes every document. It is safe to
// call more than once.
func (app *Application) Shutdown() error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	app.mu.Lock()
	if app.watcher != nil {
		errs = append(errs, app.watcher.Close())
		app.watcher = nil
	}
	app.mu.Unlock()

	errs = append(errs, app.documents.CloseAll())
	if app.lua != nil {
		app.lua.Close()
	}
	app.logger.Debug("application shut down")
	return errors.Join(errs...)
}
