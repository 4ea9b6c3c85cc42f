package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/textstore/internal/config/loader"
	"github.com/dshills/textstore/internal/syntax/backend"
)

// maxIncludeDepth bounds @include nesting in config files.
const maxIncludeDepth = 8

// Config holds the settings of the textstore tool.
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	Highlight HighlightConfig `toml:"highlight"`
	Parser    ParserConfig    `toml:"parser"`
	Store     StoreConfig     `toml:"store"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// HighlightConfig configures capture styling.
type HighlightConfig struct {
	// Theme names a built-in or loaded theme.
	Theme string `toml:"theme"`

	// ThemeFile is a TOML theme loaded at startup and watched for changes.
	ThemeFile string `toml:"themeFile"`

	// LuaResolver is a Lua script consulted before the theme.
	LuaResolver string `toml:"luaResolver"`

	// Deferred moves highlighting to a background worker.
	Deferred bool `toml:"deferred"`
}

// ParserConfig selects the syntax backend.
type ParserConfig struct {
	Backend   string `toml:"backend"`
	Grammar   string `toml:"grammar"`   // language override
	RulesFile string `toml:"rulesFile"` // extra YAML rule grammar
}

// StoreConfig configures text stores.
type StoreConfig struct {
	// MaxUndo bounds the undo history.
	MaxUndo int `toml:"maxUndo"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging:   LoggingConfig{Level: "info"},
		Highlight: HighlightConfig{Theme: "Default Dark"},
		Parser:    ParserConfig{Backend: backend.Auto},
		Store:     StoreConfig{MaxUndo: 1000},
	}
}

// Load builds the configuration from the defaults, the TOML file at path
// and TEXTSTORE_* environment variables, in increasing priority. An empty
// or missing path skips the file layer. Unknown keys in the file are
// errors; unknown environment variables are ignored.
func Load(path string) (*Config, error) {
	return load(loader.NewTOMLLoader(path), loader.NewEnvLoader(loader.EnvPrefix), path)
}

func load(file *loader.TOMLLoader, env loader.Loader, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		layer, err := file.LoadWithIncludes(path, maxIncludeDepth)
		if err != nil {
			return nil, err
		}
		if err := cfg.apply(path, layer, true); err != nil {
			return nil, err
		}
	}

	layer, err := env.Load()
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.apply("environment", layer, false); err != nil {
		return nil, err
	}

	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads a configuration from TOML data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	layer, err := loader.Parse("<data>", data)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := cfg.apply("<data>", layer, true); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply decodes a layer onto c. Keys the layer lacks keep their values.
func (c *Config) apply(source string, layer map[string]any, strict bool) error {
	if len(layer) == 0 {
		return nil
	}
	data, err := toml.Marshal(layer)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(c); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return fmt.Errorf("%s: %w: %s", source, ErrUnknownSetting, missing.String())
		}
		return loader.NewParseError(source, err)
	}
	return nil
}

func (c *Config) expandPaths() {
	c.Highlight.ThemeFile = os.ExpandEnv(c.Highlight.ThemeFile)
	c.Highlight.LuaResolver = os.ExpandEnv(c.Highlight.LuaResolver)
	c.Parser.RulesFile = os.ExpandEnv(c.Parser.RulesFile)
}

// Validate checks values that decoding cannot.
func (c *Config) Validate() error {
	var errs []error
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: logging.level %q", ErrInvalidValue, c.Logging.Level))
	}
	if c.Parser.Backend != "" && !slices.Contains(backend.Names, c.Parser.Backend) {
		errs = append(errs, fmt.Errorf("%w: parser.backend %q (want one of %v)", ErrInvalidValue, c.Parser.Backend, backend.Names))
	}
	if c.Store.MaxUndo < 0 {
		errs = append(errs, fmt.Errorf("%w: store.maxUndo %d", ErrInvalidValue, c.Store.MaxUndo))
	}
	return errors.Join(errs...)
}
