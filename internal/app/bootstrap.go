package app

import (
	"fmt"

	"github.com/dshills/textstore/internal/config"
	"github.com/dshills/textstore/internal/logging"
	"github.com/dshills/textstore/internal/renderer/highlight"
	"github.com/dshills/textstore/internal/syntax/rules"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{app: app, opts: opts}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"logging", b.initLogging},
		{"theme", b.initTheme},
		{"lua resolver", b.initLua},
		{"grammars", b.initGrammars},
		{"documents", b.initDocuments},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	b.app.logger.Debug("application started", "components", b.initOrder)
	return nil
}

func (b *bootstrapper) initConfig() error {
	cfg := b.opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(b.opts.ConfigPath); err != nil {
			return err
		}
	}
	if b.opts.LogLevel != "" {
		cfg.Logging.Level = b.opts.LogLevel
	}
	if b.opts.Backend != "" {
		cfg.Parser.Backend = b.opts.Backend
	}
	if b.opts.Theme != "" {
		cfg.Highlight.Theme = b.opts.Theme
	}
	if b.opts.Deferred {
		cfg.Highlight.Deferred = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.app.config = cfg
	return nil
}

func (b *bootstrapper) initLogging() error {
	b.app.logger = logging.New(b.app.config.Logging.Level)
	logging.SetDefault(b.app.logger)
	return nil
}

// initTheme picks the named theme, replaced by the theme file when one is
// configured.
func (b *bootstrapper) initTheme() error {
	cfg := b.app.config.Highlight
	themes := highlight.NewThemeRegistry()

	theme, ok := themes.Get(cfg.Theme)
	if !ok {
		return fmt.Errorf("unknown theme %q (have %v)", cfg.Theme, themes.Names())
	}
	if cfg.ThemeFile != "" {
		var err error
		if theme, err = themes.LoadFile(cfg.ThemeFile); err != nil {
			return err
		}
	}
	themes.SetCurrent(theme.Name)
	b.app.logger.Debug("theme selected", logging.FieldTheme, theme.Name)

	b.app.themes = themes
	b.app.theme = highlight.NewSwappable(theme)
	b.app.resolver = b.app.theme
	return nil
}

// initLua puts the Lua resolver ahead of the theme.
func (b *bootstrapper) initLua() error {
	path := b.app.config.Highlight.LuaResolver
	if path == "" {
		return nil
	}
	lua, err := highlight.LoadLuaResolver(path)
	if err != nil {
		return err
	}
	b.app.lua = lua
	b.app.resolver = highlight.Chain{lua, b.app.theme}
	return nil
}

func (b *bootstrapper) initGrammars() error {
	reg, err := rules.NewRegistry()
	if err != nil {
		return err
	}
	if file := b.app.config.Parser.RulesFile; file != "" {
		g, err := reg.LoadFile(file)
		if err != nil {
			return err
		}
		b.app.logger.Debug("grammar loaded", logging.FieldPath, file, logging.FieldLang, g.Name)
	}
	b.app.grammars = reg
	return nil
}

func (b *bootstrapper) initDocuments() error {
	b.app.documents = NewDocumentManager()
	return nil
}

// cleanup releases whatever the failed bootstrap already created.
func (b *bootstrapper) cleanup() {
	if b.app.lua != nil {
		b.app.lua.Close()
		b.app.lua = nil
	}
}
