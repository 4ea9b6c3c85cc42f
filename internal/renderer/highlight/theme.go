package highlight

import (
	"sort"
	"strings"
	"sync"

	"github.com/dshills/textstore/internal/renderer/core"
)

// Theme defines colors and styles for syntax highlighting.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Background is the editor background color.
	Background core.Color

	// Foreground is the default text color.
	Foreground core.Color

	// Selection is the selection highlight color.
	Selection core.Color

	// Cursor is the cursor color.
	Cursor core.Color

	// LineHighlight is the current line highlight color.
	LineHighlight core.Color

	// Styles maps capture names such as "keyword" or "string.escape" to
	// their styles.
	Styles map[string]core.Style
}

// Resolve returns the style for a capture name. A dotted name that has no
// style of its own falls back to its parents: "function.method.call" tries
// "function.method", then "function". It reports false when no prefix has a
// style.
func (t *Theme) Resolve(capture string) (core.Style, bool) {
	for capture != "" {
		if style, ok := t.Styles[capture]; ok {
			return style, true
		}
		i := strings.LastIndexByte(capture, '.')
		if i < 0 {
			break
		}
		capture = capture[:i]
	}
	return core.Style{}, false
}

// StyleFor returns the style for a capture, or the theme foreground when the
// theme has none.
func (t *Theme) StyleFor(capture string) core.Style {
	if style, ok := t.Resolve(capture); ok {
		return style
	}
	return core.Style{
		Foreground: t.Foreground,
		Background: core.ColorDefault,
	}
}

// Clone returns a deep copy of the theme.
func (t *Theme) Clone() *Theme {
	c := *t
	c.Styles = make(map[string]core.Style, len(t.Styles))
	for k, v := range t.Styles {
		c.Styles[k] = v
	}
	return &c
}

// DefaultTheme returns a sensible default dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		Name:          "Default Dark",
		Background:    core.ColorFromRGB(30, 30, 30),
		Foreground:    core.ColorFromRGB(212, 212, 212),
		Selection:     core.ColorFromRGB(64, 64, 128),
		Cursor:        core.ColorFromRGB(255, 255, 255),
		LineHighlight: core.ColorFromRGB(40, 40, 40),
		Styles:        defaultDarkStyles(),
	}
}

// MonokaiTheme returns a Monokai-inspired theme.
func MonokaiTheme() *Theme {
	return &Theme{
		Name:          "Monokai",
		Background:    core.ColorFromRGB(39, 40, 34),
		Foreground:    core.ColorFromRGB(248, 248, 242),
		Selection:     core.ColorFromRGB(73, 72, 62),
		Cursor:        core.ColorFromRGB(248, 248, 240),
		LineHighlight: core.ColorFromRGB(62, 61, 50),
		Styles:        monokaiStyles(),
	}
}

// DraculaTheme returns a Dracula-inspired theme.
func DraculaTheme() *Theme {
	return &Theme{
		Name:          "Dracula",
		Background:    core.ColorFromRGB(40, 42, 54),
		Foreground:    core.ColorFromRGB(248, 248, 242),
		Selection:     core.ColorFromRGB(68, 71, 90),
		Cursor:        core.ColorFromRGB(248, 248, 242),
		LineHighlight: core.ColorFromRGB(68, 71, 90),
		Styles:        draculaStyles(),
	}
}

// SolarizedDarkTheme returns a Solarized Dark theme.
func SolarizedDarkTheme() *Theme {
	return &Theme{
		Name:          "Solarized Dark",
		Background:    core.ColorFromRGB(0, 43, 54),
		Foreground:    core.ColorFromRGB(131, 148, 150),
		Selection:     core.ColorFromRGB(7, 54, 66),
		Cursor:        core.ColorFromRGB(131, 148, 150),
		LineHighlight: core.ColorFromRGB(7, 54, 66),
		Styles:        solarizedDarkStyles(),
	}
}

// LightTheme returns a light theme.
func LightTheme() *Theme {
	return &Theme{
		Name:          "Light",
		Background:    core.ColorFromRGB(255, 255, 255),
		Foreground:    core.ColorFromRGB(0, 0, 0),
		Selection:     core.ColorFromRGB(173, 214, 255),
		Cursor:        core.ColorFromRGB(0, 0, 0),
		LineHighlight: core.ColorFromRGB(245, 245, 245),
		Styles:        lightStyles(),
	}
}

func defaultDarkStyles() map[string]core.Style {
	comment := core.ColorFromRGB(106, 153, 85)   // Green
	keyword := core.ColorFromRGB(86, 156, 214)   // Blue
	str := core.ColorFromRGB(206, 145, 120)      // Orange
	number := core.ColorFromRGB(181, 206, 168)   // Light green
	function := core.ColorFromRGB(220, 220, 170) // Yellow
	typ := core.ColorFromRGB(78, 201, 176)       // Teal
	variable := core.ColorFromRGB(156, 220, 254) // Light blue
	operator := core.ColorFromRGB(212, 212, 212) // White
	invalid := core.ColorFromRGB(244, 71, 71)    // Red

	return map[string]core.Style{
		"comment": core.NewStyle(comment).Italic(),

		"string":        core.NewStyle(str),
		"string.escape": core.NewStyle(core.ColorFromRGB(215, 186, 125)),
		"escape":        core.NewStyle(core.ColorFromRGB(215, 186, 125)),

		"number":  core.NewStyle(number),
		"boolean": core.NewStyle(keyword),

		"keyword": core.NewStyle(keyword),
		"storage": core.NewStyle(keyword),
		"meta":    core.NewStyle(core.ColorFromRGB(197, 134, 192)),

		"operator":    core.NewStyle(operator),
		"punctuation": core.NewStyle(operator),

		"variable":          core.NewStyle(variable),
		"property":          core.NewStyle(variable),
		"constant":          core.NewStyle(core.ColorFromRGB(79, 193, 255)),
		"constant.language": core.NewStyle(keyword),
		"constant.builtin":  core.NewStyle(keyword),

		"function":    core.NewStyle(function),
		"constructor": core.NewStyle(typ),

		"type":      core.NewStyle(typ),
		"namespace": core.NewStyle(typ),
		"module":    core.NewStyle(typ),
		"tag":       core.NewStyle(keyword),
		"attribute": core.NewStyle(variable),
		"label":     core.NewStyle(function),

		"invalid":            core.NewStyle(invalid),
		"invalid.deprecated": core.NewStyle(invalid).Strikethrough(),
		"invalid.illegal":    core.NewStyle(invalid).Bold(),

		"markup.heading": core.NewStyle(keyword).Bold(),
		"markup.bold":    core.DefaultStyle().Bold(),
		"markup.italic":  core.DefaultStyle().Italic(),
		"markup.strike":  core.DefaultStyle().Strikethrough(),
		"markup.code":    core.NewStyle(str),
		"markup.link":    core.NewStyle(typ).Underline(),
		"markup.list":    core.NewStyle(keyword),
		"markup.quote":   core.NewStyle(comment).Italic(),
	}
}

func monokaiStyles() map[string]core.Style {
	pink := core.ColorFromRGB(249, 38, 114)
	green := core.ColorFromRGB(166, 226, 46)
	orange := core.ColorFromRGB(253, 151, 31)
	yellow := core.ColorFromRGB(230, 219, 116)
	blue := core.ColorFromRGB(102, 217, 239)
	purple := core.ColorFromRGB(174, 129, 255)
	comment := core.ColorFromRGB(117, 113, 94)
	white := core.ColorFromRGB(248, 248, 242)

	return map[string]core.Style{
		"comment": core.NewStyle(comment),

		"string":        core.NewStyle(yellow),
		"string.escape": core.NewStyle(purple),
		"escape":        core.NewStyle(purple),

		"number":  core.NewStyle(purple),
		"boolean": core.NewStyle(purple),

		"keyword":             core.NewStyle(pink),
		"keyword.declaration": core.NewStyle(blue).Italic(),
		"storage":             core.NewStyle(pink),
		"storage.type":        core.NewStyle(blue).Italic(),

		"operator":    core.NewStyle(pink),
		"punctuation": core.NewStyle(white),

		"variable":           core.NewStyle(white),
		"variable.parameter": core.NewStyle(orange).Italic(),
		"constant":           core.NewStyle(purple),

		"function":         core.NewStyle(green),
		"function.builtin": core.NewStyle(blue),

		"type":        core.NewStyle(blue).Italic(),
		"type.class":  core.NewStyle(green).Underline(),
		"type.struct": core.NewStyle(green),
		"tag":         core.NewStyle(pink),
		"attribute":   core.NewStyle(green),

		"invalid":            core.NewStyle(pink).WithBackground(core.ColorFromRGB(80, 20, 40)),
		"invalid.deprecated": core.NewStyle(comment).Strikethrough(),
		"invalid.illegal":    core.NewStyle(pink).Bold(),

		"markup.heading": core.NewStyle(green).Bold(),
		"markup.code":    core.NewStyle(yellow),
	}
}

func draculaStyles() map[string]core.Style {
	pink := core.ColorFromRGB(255, 121, 198)
	green := core.ColorFromRGB(80, 250, 123)
	orange := core.ColorFromRGB(255, 184, 108)
	yellow := core.ColorFromRGB(241, 250, 140)
	purple := core.ColorFromRGB(189, 147, 249)
	cyan := core.ColorFromRGB(139, 233, 253)
	red := core.ColorFromRGB(255, 85, 85)
	comment := core.ColorFromRGB(98, 114, 164)
	white := core.ColorFromRGB(248, 248, 242)

	return map[string]core.Style{
		"comment": core.NewStyle(comment),

		"string":        core.NewStyle(yellow),
		"string.escape": core.NewStyle(pink),

		"number": core.NewStyle(purple),

		"keyword": core.NewStyle(pink),
		"storage": core.NewStyle(pink),

		"operator":    core.NewStyle(pink),
		"punctuation": core.NewStyle(white),

		"variable":           core.NewStyle(white),
		"variable.parameter": core.NewStyle(orange).Italic(),
		"constant":           core.NewStyle(purple),

		"function":         core.NewStyle(green),
		"function.builtin": core.NewStyle(cyan),

		"type": core.NewStyle(cyan).Italic(),

		"invalid":         core.NewStyle(red),
		"invalid.illegal": core.NewStyle(red).Bold(),
	}
}

func solarizedDarkStyles() map[string]core.Style {
	base01 := core.ColorFromRGB(88, 110, 117)
	yellow := core.ColorFromRGB(181, 137, 0)
	orange := core.ColorFromRGB(203, 75, 22)
	red := core.ColorFromRGB(220, 50, 47)
	magenta := core.ColorFromRGB(211, 54, 130)
	violet := core.ColorFromRGB(108, 113, 196)
	blue := core.ColorFromRGB(38, 139, 210)
	cyan := core.ColorFromRGB(42, 161, 152)
	green := core.ColorFromRGB(133, 153, 0)

	return map[string]core.Style{
		"comment": core.NewStyle(base01).Italic(),

		"string":        core.NewStyle(cyan),
		"string.escape": core.NewStyle(orange),

		"number": core.NewStyle(magenta),

		"keyword":          core.NewStyle(green),
		"storage":          core.NewStyle(green),
		"storage.modifier": core.NewStyle(orange),

		"operator":    core.NewStyle(green),
		"punctuation": core.NewStyle(base01),

		"variable": core.NewStyle(blue),
		"constant": core.NewStyle(violet),

		"function": core.NewStyle(blue),

		"type": core.NewStyle(yellow),

		"invalid":         core.NewStyle(red),
		"invalid.illegal": core.NewStyle(red).Bold(),
	}
}

func lightStyles() map[string]core.Style {
	comment := core.ColorFromRGB(0, 128, 0)    // Green
	keyword := core.ColorFromRGB(0, 0, 255)    // Blue
	str := core.ColorFromRGB(163, 21, 21)      // Dark red
	number := core.ColorFromRGB(9, 134, 88)    // Teal
	function := core.ColorFromRGB(121, 94, 38) // Brown
	typ := core.ColorFromRGB(38, 127, 153)     // Cyan
	variable := core.ColorFromRGB(0, 16, 128)  // Dark blue
	operator := core.ColorFromRGB(0, 0, 0)     // Black
	invalid := core.ColorFromRGB(205, 49, 49)  // Red

	return map[string]core.Style{
		"comment": core.NewStyle(comment).Italic(),

		"string":        core.NewStyle(str),
		"string.escape": core.NewStyle(invalid),

		"number": core.NewStyle(number),

		"keyword": core.NewStyle(keyword),
		"storage": core.NewStyle(keyword),

		"operator":    core.NewStyle(operator),
		"punctuation": core.NewStyle(operator),

		"variable":          core.NewStyle(variable),
		"constant":          core.NewStyle(core.ColorFromRGB(0, 112, 193)),
		"constant.language": core.NewStyle(keyword),

		"function": core.NewStyle(function),

		"type": core.NewStyle(typ),

		"invalid":         core.NewStyle(invalid),
		"invalid.illegal": core.NewStyle(invalid).Bold(),

		"markup.heading": core.NewStyle(keyword).Bold(),
	}
}

// ThemeRegistry holds available themes.
type ThemeRegistry struct {
	mu      sync.RWMutex
	themes  map[string]*Theme
	current *Theme
}

// NewThemeRegistry creates a new theme registry with built-in themes.
func NewThemeRegistry() *ThemeRegistry {
	r := &ThemeRegistry{
		themes: make(map[string]*Theme),
	}

	r.Register(DefaultTheme())
	r.Register(MonokaiTheme())
	r.Register(DraculaTheme())
	r.Register(SolarizedDarkTheme())
	r.Register(LightTheme())

	r.current = r.themes["Default Dark"]
	return r
}

// Register adds a theme to the registry, replacing one with the same name.
func (r *ThemeRegistry) Register(theme *Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes[theme.Name] = theme
	if r.current != nil && r.current.Name == theme.Name {
		r.current = theme
	}
}

// Get returns a theme by name.
func (r *ThemeRegistry) Get(name string) (*Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.themes[name]
	return t, ok
}

// Current returns the current theme.
func (r *ThemeRegistry) Current() *Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// SetCurrent sets the current theme by name.
func (r *ThemeRegistry) SetCurrent(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.themes[name]; ok {
		r.current = t
		return true
	}
	return false
}

// Names returns all registered theme names in sorted order.
func (r *ThemeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
