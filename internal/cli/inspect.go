package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/textstore/internal/app"
	"github.com/dshills/textstore/internal/engine/textstore"
	"github.com/dshills/textstore/internal/logging"
	"github.com/dshills/textstore/internal/lsp"
	"github.com/dshills/textstore/internal/renderer/core"
	"github.com/dshills/textstore/internal/renderer/highlight"
)

type inspectOptions struct {
	from, to int // 1-based, inclusive; 0 means the document edge
	ranges   bool
	lsp      bool
	watch    bool
}

func newInspectCommand(g *globalOptions) *cobra.Command {
	opts := inspectOptions{ranges: true}

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the lines and highlight ranges of a file",
		Long: `Print the lines of FILE with their highlights applied, followed by the
highlight ranges with their byte and line positions.

With --watch the configured theme file is watched and the output is printed
again after every reload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), cmd.OutOrStdout(), g, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.from, "from", 0, "first line to print (1-based)")
	cmd.Flags().IntVar(&opts.to, "to", 0, "last line to print (1-based)")
	cmd.Flags().BoolVar(&opts.ranges, "ranges", true, "list highlight ranges")
	cmd.Flags().BoolVar(&opts.lsp, "lsp", false, "add LSP (UTF-16) positions to ranges")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reprint when the theme file changes")
	return cmd
}

func runInspect(ctx context.Context, w io.Writer, g *globalOptions, opts inspectOptions, path string) error {
	a, err := app.New(g.appOptions())
	if err != nil {
		return err
	}
	defer a.Shutdown()
	ctx = logging.WithLogger(ctx, a.Logger())

	doc, err := a.Open(path)
	if err != nil {
		return err
	}
	if err := doc.Store.WaitHighlights(ctx); err != nil {
		return err
	}

	st := NewStyles(w, IsColorEnabled(g.color, w))
	if err := printInspect(w, st, doc, opts); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	if a.Config().Highlight.ThemeFile == "" {
		return errors.New("--watch needs highlight.themeFile in the config")
	}

	logger := logging.FromContext(ctx)
	reloaded := make(chan struct{}, 1)
	err = a.WatchTheme(func(t *highlight.Theme, err error) {
		if err != nil {
			logger.Warn("theme reload failed", logging.FieldError, err)
			return
		}
		logger.Info("theme reloaded", logging.FieldTheme, t.Name)
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reloaded:
			if err := printInspect(w, st, doc, opts); err != nil {
				return err
			}
		}
	}
}

// lineSpan converts the 1-based flags to a 0-based inclusive line span.
func lineSpan(opts inspectOptions, count uint32) (uint32, uint32, error) {
	from, to := uint32(0), count-1
	if opts.from > 0 {
		from = uint32(opts.from - 1)
	}
	if opts.to > 0 && uint32(opts.to) <= count {
		to = uint32(opts.to - 1)
	}
	if opts.from < 0 || opts.to < 0 || from > to {
		return 0, 0, fmt.Errorf("invalid line span %d:%d of %d lines", opts.from, opts.to, count)
	}
	return from, to, nil
}

func printInspect(w io.Writer, st *Styles, doc *app.Document, opts inspectOptions) error {
	s := doc.Store
	fmt.Fprintf(w, "%s  %s  %s  %d bytes  %d lines  %s  version %d\n",
		st.Header.Render(doc.Name), doc.LanguageID, s.Backend(),
		s.Len(), s.LineCount(), s.LineEnding().Name(), s.Version())

	from, to, err := lineSpan(opts, s.LineCount())
	if err != nil {
		return err
	}
	hs := s.HighlightsInLines(from, to)

	for line := from; line <= to; line++ {
		text, err := s.LineText(line)
		if err != nil {
			return err
		}
		start, err := s.OffsetOfLine(line)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s │ %s\n", st.LineNo.Render(fmt.Sprintf("%4d", line+1)), renderLine(st, text, start, hs))
	}

	if !opts.ranges {
		return nil
	}
	fmt.Fprintln(w, st.Header.Render(fmt.Sprintf("highlights (%d):", len(hs))))
	conv := lsp.Converter{Store: s}
	for _, h := range hs {
		fmt.Fprintf(w, "  %s %s-%s [%d,%d) %s",
			st.Capture.Render(h.Capture), h.Position, h.End, h.Range.Start, h.Range.End,
			st.Dim.Render(h.Attribute.String()))
		if opts.lsp {
			r := conv.HighlightRange(h)
			fmt.Fprintf(w, "  lsp %d:%d-%d:%d", r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// renderLine paints text, which starts at offset start, with its highlights.
func renderLine(st *Styles, text string, start textstore.ByteOffset, hs []textstore.HighlightRange) string {
	var b strings.Builder
	for _, seg := range lineSegments(text, start, hs) {
		if seg.styled {
			b.WriteString(st.Paint(seg.style, seg.text))
		} else {
			b.WriteString(seg.text)
		}
	}
	return b.String()
}

// segment is a run of bytes sharing one style.
type segment struct {
	text   string
	style  core.Style
	styled bool
}

// lineSegments splits text into runs of equal style. Highlights are layered
// in order, so a nested capture is drawn over the one enclosing it.
func lineSegments(text string, start textstore.ByteOffset, hs []textstore.HighlightRange) []segment {
	if text == "" {
		return nil
	}
	styles := make([]core.Style, len(text))
	styled := make([]bool, len(text))
	for i := range styles {
		styles[i] = core.DefaultStyle()
	}
	end := start + textstore.ByteOffset(len(text))
	for _, h := range hs {
		lo, hi := max(h.Range.Start, start), min(h.Range.End, end)
		for j := lo; j < hi; j++ {
			styles[j-start] = styles[j-start].Merge(h.Attribute)
			styled[j-start] = true
		}
	}

	var out []segment
	for i := 0; i < len(text); {
		j := i + 1
		for j < len(text) && styled[j] == styled[i] && styles[j].Equals(styles[i]) {
			j++
		}
		out = append(out, segment{text: text[i:j], style: styles[i], styled: styled[i]})
		i = j
	}
	return out
}
