package rules

import (
	"context"
	"fmt"
	"sort"

	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/syntax"
)

// ctxCheckInterval is how many lines are lexed between context checks.
const ctxCheckInterval = 256

// tree is the lexed document: one state per line plus line start offsets.
type tree struct {
	grammar *Grammar
	length  syntax.ByteOffset
	starts  []syntax.ByteOffset
	lines   []lineState
}

func (t *tree) Len() syntax.ByteOffset {
	return t.length
}

// lineEnd returns the offset just past line i including its terminator.
func (t *tree) lineEnd(i int) syntax.ByteOffset {
	if i+1 < len(t.starts) {
		return t.starts[i+1]
	}
	return t.length
}

// Parser lexes documents with one grammar. Lines before an edit keep their
// lexed state; lexing resumes at the first edited line and stops once a line
// after the edit ends in the same state it did before.
type Parser struct {
	grammar *Grammar
}

// NewParser returns a parser for g.
func NewParser(g *Grammar) *Parser {
	return &Parser{grammar: g}
}

// Name implements syntax.Backend.
func (p *Parser) Name() string {
	return "rules/" + p.grammar.Name
}

// Parse implements syntax.Parser. The changed ranges cover the lines that
// were lexed again.
func (p *Parser) Parse(ctx context.Context, src syntax.Source, old syntax.Tree, delta *syntax.Delta) (syntax.ParseResult, error) {
	text := syntax.Text(src)
	records := lineindex.Build(text).Records()

	t := &tree{
		grammar: p.grammar,
		length:  syntax.ByteOffset(len(text)),
		starts:  make([]syntax.ByteOffset, len(records)),
		lines:   make([]lineState, len(records)),
	}
	var off syntax.ByteOffset
	for i, r := range records {
		t.starts[i] = off
		off += r.TotalLength()
	}

	var prev *tree
	if old != nil && delta != nil {
		ot, ok := old.(*tree)
		if !ok || ot.grammar != p.grammar {
			return syntax.ParseResult{}, fmt.Errorf("%s: %w", p.Name(), syntax.ErrForeignTree)
		}
		prev = ot
	}

	first, lastEdited, shift := 0, len(records)-1, 0
	if prev != nil {
		first = min(int(delta.StartPoint.Line), len(prev.lines), len(records))
		lastEdited = int(delta.NewEndPoint.Line)
		shift = int(delta.NewEndPoint.Line) - int(delta.OldEndPoint.Line)
		copy(t.lines[:first], prev.lines[:first])
	}

	state := stateNormal
	if first > 0 {
		state = t.lines[first-1].endState
	}

	i := first
	for ; i < len(records); i++ {
		if i > lastEdited && prev != nil {
			j := i - shift
			if j >= 0 && j < len(prev.lines) && len(prev.lines)-j == len(records)-i &&
				prev.lines[j].startState == state {
				copy(t.lines[i:], prev.lines[j:])
				break
			}
		}
		if (i-first)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return syntax.ParseResult{}, err
			}
		}
		line := text[t.starts[i] : t.starts[i]+records[i].ByteLength]
		t.lines[i] = p.grammar.tokenizeLine(line, state)
		state = t.lines[i].endState
	}

	var changed []syntax.ByteRange
	if prev == nil {
		changed = syntax.WholeDocument(src)
	} else if i > first {
		changed = []syntax.ByteRange{{Start: t.starts[first], End: t.lineEnd(i - 1)}}
	} else if first < len(records) {
		changed = []syntax.ByteRange{{Start: t.starts[first], End: t.lineEnd(first)}}
	}
	return syntax.ParseResult{Tree: t, ChangedRanges: changed}, nil
}

// Captures implements syntax.Querier.
func (p *Parser) Captures(ctx context.Context, tr syntax.Tree, src syntax.Source, r syntax.ByteRange) ([]syntax.CaptureSpan, error) {
	t, ok := tr.(*tree)
	if !ok || t.grammar != p.grammar {
		return nil, fmt.Errorf("%s: %w", p.Name(), syntax.ErrForeignTree)
	}
	if len(t.lines) == 0 || r.IsEmpty() {
		return nil, nil
	}

	// First line whose end passes r.Start.
	i := sort.Search(len(t.lines), func(i int) bool { return t.lineEnd(i) > r.Start })
	var out []syntax.CaptureSpan
	for ; i < len(t.lines) && t.starts[i] < r.End; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		base := t.starts[i]
		for _, s := range t.lines[i].spans {
			out = append(out, syntax.CaptureSpan{
				Range: syntax.ByteRange{Start: base + syntax.ByteOffset(s.start), End: base + syntax.ByteOffset(s.end)},
				Name:  s.capture,
			})
		}
	}
	return syntax.Clip(out, r), nil
}
