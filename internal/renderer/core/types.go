// Package core provides the display attribute types shared by highlighting
// and rendering: colors, text attributes and styles.
package core

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint16

// Text attribute flags.
const (
	AttrNone          Attribute = 0
	AttrBold          Attribute = 1 << iota
	AttrDim                     // Faint/dim text
	AttrItalic                  // Italic text
	AttrUnderline               // Underlined text
	AttrBlink                   // Blinking text (rarely supported)
	AttrReverse                 // Reverse video (swap fg/bg)
	AttrStrikethrough           // Strikethrough text
)

var attributeNames = []struct {
	attr Attribute
	name string
}{
	{AttrBold, "bold"},
	{AttrDim, "dim"},
	{AttrItalic, "italic"},
	{AttrUnderline, "underline"},
	{AttrBlink, "blink"},
	{AttrReverse, "reverse"},
	{AttrStrikethrough, "strikethrough"},
}

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// With returns a new attribute set with the given attribute added.
func (a Attribute) With(attr Attribute) Attribute {
	return a | attr
}

// Names returns the names of the set attributes in a fixed order.
func (a Attribute) Names() []string {
	var names []string
	for _, an := range attributeNames {
		if a.Has(an.attr) {
			names = append(names, an.name)
		}
	}
	return names
}

// ParseAttributes converts attribute names such as "bold" or "italic" into an
// attribute set. Names are case-insensitive.
func ParseAttributes(names ...string) (Attribute, error) {
	var attrs Attribute
outer:
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == "none" {
			continue
		}
		for _, an := range attributeNames {
			if an.name == name {
				attrs |= an.attr
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown text attribute %q", name)
	}
	return attrs, nil
}

// Color represents a color value.
// Supports true color (RGB) and terminal palette colors.
type Color struct {
	R, G, B uint8
	// If Indexed is true, R contains the palette index (0-255).
	// G and B are ignored in indexed mode.
	Indexed bool
	// Default indicates this is the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a true color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex creates an indexed palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// ColorFromHex creates a color from a "#rrggbb" or "#rgb" string. The leading
// "#" is optional.
func ColorFromHex(hex string) (Color, error) {
	c, err := colorful.Hex("#" + strings.TrimPrefix(hex, "#"))
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %s", hex)
	}
	return fromColorful(c), nil
}

// ParseColor accepts a hex color, "default", a W3C color name such as
// "fuchsia", or a palette index written as "idx(N)" or a bare number.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, "default"):
		return ColorDefault, nil
	case strings.HasPrefix(s, "idx(") && strings.HasSuffix(s, ")"):
		return parseIndex(s[4 : len(s)-1])
	case strings.HasPrefix(s, "#"):
		return ColorFromHex(s)
	}
	if c, err := parseIndex(s); err == nil {
		return c, nil
	}
	if tc, ok := tcell.ColorNames[strings.ToLower(s)]; ok {
		r, g, b := tc.RGB()
		return ColorFromRGB(uint8(r), uint8(g), uint8(b)), nil
	}
	return ColorFromHex(s)
}

func parseIndex(s string) (Color, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 0 || n > 255 || fmt.Sprint(n) != s {
		return Color{}, fmt.Errorf("invalid palette index: %s", s)
	}
	return ColorFromIndex(uint8(n)), nil
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// IsDefault returns true if this is the default/transparent color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Equals returns true if two colors are equal.
func (c Color) Equals(other Color) bool {
	if c.Default != other.Default {
		return false
	}
	if c.Default {
		return true
	}
	if c.Indexed != other.Indexed {
		return false
	}
	if c.Indexed {
		return c.R == other.R
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the color.
func (c Color) String() string {
	if c.IsDefault() {
		return "default"
	}
	if c.Indexed {
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return c.ToHex()
}

// ToHex returns the hex representation of a true color.
func (c Color) ToHex() string {
	if c.Indexed || c.Default {
		return ""
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Style represents the visual style of text.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{
		Foreground: ColorDefault,
		Background: ColorDefault,
	}
}

// NewStyle creates a style with the given foreground color.
func NewStyle(fg Color) Style {
	return Style{
		Foreground: fg,
		Background: ColorDefault,
	}
}

// WithForeground returns a new style with the given foreground color.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns a new style with the given background color.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// WithAttributes returns a new style with the given attributes.
func (s Style) WithAttributes(attrs Attribute) Style {
	s.Attributes = attrs
	return s
}

// Bold returns a new style with bold attribute added.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Italic returns a new style with italic attribute added.
func (s Style) Italic() Style {
	s.Attributes |= AttrItalic
	return s
}

// Underline returns a new style with underline attribute added.
func (s Style) Underline() Style {
	s.Attributes |= AttrUnderline
	return s
}

// Strikethrough returns a new style with strikethrough attribute added.
func (s Style) Strikethrough() Style {
	s.Attributes |= AttrStrikethrough
	return s
}

// Merge layers other on top of s. Default colors in other leave s unchanged;
// attributes are combined.
func (s Style) Merge(other Style) Style {
	result := s
	if !other.Foreground.IsDefault() {
		result.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		result.Background = other.Background
	}
	result.Attributes |= other.Attributes
	return result
}

// Equals returns true if two styles are identical.
func (s Style) Equals(other Style) bool {
	return s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background) &&
		s.Attributes == other.Attributes
}

// IsDefault returns true if this is the default style.
func (s Style) IsDefault() bool {
	return s.Foreground.IsDefault() &&
		s.Background.IsDefault() &&
		s.Attributes == AttrNone
}

// String returns a compact description such as "#F92672 bold".
func (s Style) String() string {
	parts := []string{s.Foreground.String()}
	if !s.Background.IsDefault() {
		parts = append(parts, "on "+s.Background.String())
	}
	parts = append(parts, s.Attributes.Names()...)
	return strings.Join(parts, " ")
}
