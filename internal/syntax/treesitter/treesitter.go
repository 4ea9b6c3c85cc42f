// Package treesitter adapts gotreesitter grammars to the syntax backend
// interface. Parses are incremental: the previous tree is edited with the
// delta and handed back to the parser.
package treesitter

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/odvcencio/gotreesitter"
	"github.com/odvcencio/gotreesitter/grammars"

	"github.com/dshills/textstore/internal/engine/tracking"
	"github.com/dshills/textstore/internal/syntax"
)

// tree wraps a gotreesitter tree. A tree that has been handed to Parse as
// the old tree is edited in place and cannot be queried again.
type tree struct {
	owner  *Parser
	ts     *gotreesitter.Tree
	length syntax.ByteOffset

	mu       sync.Mutex
	consumed bool
	spans    []syntax.CaptureSpan
	longest  syntax.ByteOffset
	queried  bool
}

func (t *tree) Len() syntax.ByteOffset {
	return t.length
}

// Parser parses one language with gotreesitter.
type Parser struct {
	name    string
	lang    *gotreesitter.Language
	parser  *gotreesitter.Parser
	query   *gotreesitter.Query
	factory func(src []byte) gotreesitter.TokenSource

	mu sync.Mutex // gotreesitter parsers are not safe for concurrent use
}

// New returns a parser for the language detected from filename.
func New(filename string) (*Parser, error) {
	entry := grammars.DetectLanguage(filepath.Base(filename))
	if entry == nil {
		return nil, fmt.Errorf("treesitter %q: %w", filename, syntax.ErrUnknownLanguage)
	}

	lang := entry.Language()
	support := grammars.EvaluateParseSupport(*entry, lang)
	if support.Backend == grammars.ParseBackendUnsupported {
		return nil, fmt.Errorf("treesitter %s: %w", entry.Name, syntax.ErrUnknownLanguage)
	}

	query, err := gotreesitter.NewQuery(entry.HighlightQuery, lang)
	if err != nil {
		return nil, fmt.Errorf("treesitter %s: highlight query: %w", entry.Name, err)
	}

	p := &Parser{
		name:   strings.ToLower(entry.Name),
		lang:   lang,
		parser: gotreesitter.NewParser(lang),
		query:  query,
	}
	if entry.TokenSourceFactory != nil {
		factory := entry.TokenSourceFactory
		p.factory = func(src []byte) gotreesitter.TokenSource {
			return factory(src, lang)
		}
	}
	return p, nil
}

// Name implements syntax.Backend.
func (p *Parser) Name() string {
	return "treesitter/" + p.name
}

// Parse implements syntax.Parser. The old tree is consumed: it is edited to
// match the new text and reused by the parser. A consumed tree passed again
// causes a full parse.
func (p *Parser) Parse(ctx context.Context, src syntax.Source, old syntax.Tree, delta *syntax.Delta) (syntax.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return syntax.ParseResult{}, err
	}
	text := []byte(syntax.Text(src))

	var prev *gotreesitter.Tree
	var oldSpan syntax.ByteRange
	if old != nil && delta != nil {
		ot, ok := old.(*tree)
		if !ok || ot.owner != p {
			return syntax.ParseResult{}, fmt.Errorf("%s: %w", p.Name(), syntax.ErrForeignTree)
		}
		ot.mu.Lock()
		if !ot.consumed {
			ot.consumed = true
			ot.ts.Edit(inputEdit(*delta))
			prev = ot.ts
			oldSpan = containing(prev.RootNode(), delta.StartByte, delta.NewEndByte)
		}
		ot.mu.Unlock()
	}

	p.mu.Lock()
	ts := p.parse(text, prev)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return syntax.ParseResult{}, err
	}
	if ts == nil || ts.RootNode() == nil && len(text) > 0 {
		return syntax.ParseResult{}, fmt.Errorf("%s: parse produced no tree", p.Name())
	}

	t := &tree{owner: p, ts: ts, length: syntax.ByteOffset(len(text))}
	if prev == nil {
		return syntax.ParseResult{Tree: t, ChangedRanges: syntax.WholeDocument(src)}, nil
	}

	changed := containing(ts.RootNode(), delta.StartByte, delta.NewEndByte).Union(oldSpan)
	changed.End = min(changed.End, t.length)
	return syntax.ParseResult{Tree: t, ChangedRanges: []syntax.ByteRange{changed}}, nil
}

func (p *Parser) parse(text []byte, old *gotreesitter.Tree) *gotreesitter.Tree {
	if p.factory != nil {
		ts := p.factory(text)
		if old != nil {
			return p.parser.ParseIncrementalWithTokenSource(text, old, ts)
		}
		return p.parser.ParseWithTokenSource(text, ts)
	}
	if old != nil {
		return p.parser.ParseIncremental(text, old)
	}
	return p.parser.Parse(text)
}

// Captures implements syntax.Querier. gotreesitter queries only execute
// over a whole tree, so the query runs once per tree and every call,
// including the first, filters the cached spans to r.
func (p *Parser) Captures(ctx context.Context, tr syntax.Tree, _ syntax.Source, r syntax.ByteRange) ([]syntax.CaptureSpan, error) {
	t, ok := tr.(*tree)
	if !ok || t.owner != p {
		return nil, fmt.Errorf("%s: %w", p.Name(), syntax.ErrForeignTree)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.queried {
		if t.consumed {
			return nil, fmt.Errorf("%s: tree was consumed by a later parse", p.Name())
		}
		t.spans = p.execute(t.ts)
		t.queried = true
		for _, s := range t.spans {
			t.longest = max(t.longest, s.Range.Len())
		}
	}

	// Spans are sorted by start only; none starting before r.Start-longest
	// can reach r.
	lo := r.Start - t.longest
	i := sort.Search(len(t.spans), func(i int) bool { return t.spans[i].Range.Start >= lo })
	var out []syntax.CaptureSpan
	for ; i < len(t.spans) && t.spans[i].Range.Start < r.End; i++ {
		if t.spans[i].Range.End > r.Start {
			out = append(out, t.spans[i])
		}
	}
	return syntax.Clip(out, r), nil
}

// execute runs the highlight query and returns non-empty captures sorted by
// start, wider first.
func (p *Parser) execute(ts *gotreesitter.Tree) []syntax.CaptureSpan {
	if ts.RootNode() == nil {
		return nil
	}
	var spans []syntax.CaptureSpan
	for _, m := range p.query.Execute(ts) {
		for _, c := range m.Captures {
			start, end := c.Node.StartByte(), c.Node.EndByte()
			if start == end {
				continue
			}
			spans = append(spans, syntax.CaptureSpan{
				Range: syntax.ByteRange{Start: syntax.ByteOffset(start), End: syntax.ByteOffset(end)},
				Name:  c.Name,
			})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i].Range, spans[j].Range
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End > b.End
	})
	return spans
}

func inputEdit(d tracking.ParserDelta) gotreesitter.InputEdit {
	return gotreesitter.InputEdit{
		StartByte:   uint32(d.StartByte),
		OldEndByte:  uint32(d.OldEndByte),
		NewEndByte:  uint32(d.NewEndByte),
		StartPoint:  point(d.StartPoint),
		OldEndPoint: point(d.OldEndPoint),
		NewEndPoint: point(d.NewEndPoint),
	}
}

func point(p tracking.Position) gotreesitter.Point {
	return gotreesitter.Point{Row: p.Line, Column: p.Column}
}

// containing returns the range of the smallest node under root that covers
// [start, end]. When only the root does, the range is open-ended.
func containing(root *gotreesitter.Node, start, end syntax.ByteOffset) syntax.ByteRange {
	if root == nil {
		return syntax.ByteRange{Start: start, End: end}
	}
	n := root
descend:
	for {
		for _, c := range n.Children() {
			if syntax.ByteOffset(c.StartByte()) <= start && syntax.ByteOffset(c.EndByte()) >= end &&
				c.EndByte() > c.StartByte() {
				n = c
				continue descend
			}
		}
		break
	}
	if n == root {
		return syntax.ByteRange{Start: 0, End: math.MaxInt64}
	}
	r := syntax.ByteRange{Start: syntax.ByteOffset(n.StartByte()), End: syntax.ByteOffset(n.EndByte())}
	return r.Union(syntax.ByteRange{Start: start, End: end})
}
