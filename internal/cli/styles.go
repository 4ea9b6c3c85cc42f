package cli

import (
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/dshills/textstore/internal/renderer/core"
)

// Styles holds the lipgloss styles of the CLI output.
type Styles struct {
	color    bool
	renderer *lipgloss.Renderer

	Header  lipgloss.Style
	Label   lipgloss.Style
	LineNo  lipgloss.Style
	Capture lipgloss.Style
	Dim     lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

// NewStyles creates the styles for output written to w.
func NewStyles(w io.Writer, colorEnabled bool) *Styles {
	r := lipgloss.NewRenderer(w)
	s := &Styles{color: colorEnabled, renderer: r}
	if !colorEnabled {
		plain := r.NewStyle()
		s.Header, s.Label, s.LineNo, s.Capture = plain, plain, plain, plain
		s.Dim, s.Error, s.Success = plain, plain, plain
		return s
	}

	s.Header = r.NewStyle().Bold(true)
	s.Label = r.NewStyle().Foreground(lipgloss.Color("12"))
	s.LineNo = r.NewStyle().Foreground(lipgloss.Color("8"))
	s.Capture = r.NewStyle().Foreground(lipgloss.Color("14"))
	s.Dim = r.NewStyle().Foreground(lipgloss.Color("8"))
	s.Error = r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	s.Success = r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	return s
}

// Text returns the lipgloss style drawing text styled as st. Without color
// it is plain.
func (s *Styles) Text(st core.Style) lipgloss.Style {
	out := s.renderer.NewStyle()
	if !s.color {
		return out
	}
	if c, ok := lipglossColor(st.Foreground); ok {
		out = out.Foreground(c)
	}
	if c, ok := lipglossColor(st.Background); ok {
		out = out.Background(c)
	}
	a := st.Attributes
	return out.
		Bold(a.Has(core.AttrBold)).
		Faint(a.Has(core.AttrDim)).
		Italic(a.Has(core.AttrItalic)).
		Underline(a.Has(core.AttrUnderline)).
		Blink(a.Has(core.AttrBlink)).
		Reverse(a.Has(core.AttrReverse)).
		Strikethrough(a.Has(core.AttrStrikethrough))
}

// Paint renders text styled as st, or returns it unchanged without color.
func (s *Styles) Paint(st core.Style, text string) string {
	if !s.color {
		return text
	}
	return s.Text(st).Render(text)
}

func lipglossColor(c core.Color) (lipgloss.Color, bool) {
	switch {
	case c.IsDefault():
		return "", false
	case c.Indexed:
		return lipgloss.Color(strconv.Itoa(int(c.R))), true
	default:
		return lipgloss.Color(c.ToHex()), true
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if f, ok := writer.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
