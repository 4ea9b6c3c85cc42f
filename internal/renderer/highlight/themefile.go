package highlight

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/textstore/internal/renderer/core"
)

type themeFile struct {
	Name          string               `toml:"name"`
	Extends       string               `toml:"extends"`
	Background    string               `toml:"background"`
	Foreground    string               `toml:"foreground"`
	Selection     string               `toml:"selection"`
	Cursor        string               `toml:"cursor"`
	LineHighlight string               `toml:"line_highlight"`
	Styles        map[string]styleSpec `toml:"styles"`
}

type styleSpec struct {
	FG    string   `toml:"fg"`
	BG    string   `toml:"bg"`
	Attrs []string `toml:"attrs"`
}

func (s styleSpec) style() (core.Style, error) {
	fg, err := core.ParseColor(s.FG)
	if err != nil {
		return core.Style{}, err
	}
	bg, err := core.ParseColor(s.BG)
	if err != nil {
		return core.Style{}, err
	}
	attrs, err := core.ParseAttributes(s.Attrs...)
	if err != nil {
		return core.Style{}, err
	}
	return core.Style{Foreground: fg, Background: bg, Attributes: attrs}, nil
}

// ParseTheme decodes a TOML theme. A theme naming a base theme in "extends"
// starts from a copy of it, looked up in reg; reg may be nil when the theme
// extends nothing.
func ParseTheme(r io.Reader, reg *ThemeRegistry) (*Theme, error) {
	var f themeFile
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&f); err != nil {
		return nil, fmt.Errorf("decode theme: %w", err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("theme has no name")
	}

	theme := &Theme{
		Name:          f.Name,
		Background:    core.ColorDefault,
		Foreground:    core.ColorDefault,
		Selection:     core.ColorDefault,
		Cursor:        core.ColorDefault,
		LineHighlight: core.ColorDefault,
		Styles:        make(map[string]core.Style),
	}
	if f.Extends != "" {
		var base *Theme
		var ok bool
		if reg != nil {
			base, ok = reg.Get(f.Extends)
		}
		if !ok {
			return nil, fmt.Errorf("theme %s extends %q: %w", f.Name, f.Extends, ErrUnknownBaseTheme)
		}
		theme = base.Clone()
		theme.Name = f.Name
	}

	colors := []struct {
		value string
		dst   *core.Color
	}{
		{f.Background, &theme.Background},
		{f.Foreground, &theme.Foreground},
		{f.Selection, &theme.Selection},
		{f.Cursor, &theme.Cursor},
		{f.LineHighlight, &theme.LineHighlight},
	}
	for _, c := range colors {
		if c.value == "" {
			continue
		}
		color, err := core.ParseColor(c.value)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", f.Name, err)
		}
		*c.dst = color
	}

	for capture, spec := range f.Styles {
		style, err := spec.style()
		if err != nil {
			return nil, fmt.Errorf("theme %s: style %q: %w", f.Name, capture, err)
		}
		theme.Styles[capture] = style
	}
	return theme, nil
}

// LoadTheme reads a TOML theme file.
func LoadTheme(path string, reg *ThemeRegistry) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	theme, err := ParseTheme(f, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return theme, nil
}

// LoadFile reads a theme file and registers it.
func (r *ThemeRegistry) LoadFile(path string) (*Theme, error) {
	theme, err := LoadTheme(path, r)
	if err != nil {
		return nil, err
	}
	r.Register(theme)
	return theme, nil
}
