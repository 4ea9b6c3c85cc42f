package highlight

import (
	"fmt"
	"sort"

	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/renderer/core"
	"github.com/dshills/textstore/internal/syntax"
)

// PositionSource converts byte offsets to positions. *lineindex.Index
// satisfies it.
type PositionSource interface {
	Len() lineindex.ByteOffset
	PositionForOffset(offset lineindex.ByteOffset) (lineindex.Position, error)
}

// HighlightRange is a styled span of the document.
type HighlightRange struct {
	// Position is where the range starts, End where it stops (exclusive).
	Position lineindex.Position
	End      lineindex.Position

	Range  syntax.ByteRange
	Length int64

	Capture   string
	Attribute core.Style
}

// String returns a compact description of the range.
func (h HighlightRange) String() string {
	return fmt.Sprintf("%s %v-%v %s", h.Capture, h.Position, h.End, h.Attribute)
}

// Mapper converts capture spans to highlight ranges.
type Mapper struct {
	Index PositionSource
}

// ResolveCaptures converts spans to highlight ranges styled by resolver.
// Empty spans and spans the resolver rejects are dropped. When several spans
// cover exactly the same bytes the last one wins. The result is sorted by
// start offset, wider ranges first for equal starts.
func (m Mapper) ResolveCaptures(spans []syntax.CaptureSpan, resolver AttributeResolver) ([]HighlightRange, error) {
	out := make([]HighlightRange, 0, len(spans))
	seen := make(map[syntax.ByteRange]int, len(spans))

	for _, s := range spans {
		if s.Range.IsEmpty() {
			continue
		}
		style, ok := resolver.Resolve(s.Name)
		if !ok {
			continue
		}
		start, end, err := m.Locate(s.Range)
		if err != nil {
			return nil, err
		}
		h := HighlightRange{
			Position:  start,
			End:       end,
			Range:     s.Range,
			Length:    s.Range.Len(),
			Capture:   s.Name,
			Attribute: style,
		}
		if i, dup := seen[s.Range]; dup {
			out[i] = h
			continue
		}
		seen[s.Range] = len(out)
		out = append(out, h)
	}

	SortRanges(out)
	return out, nil
}

// Locate returns the positions of both ends of r.
func (m Mapper) Locate(r syntax.ByteRange) (start, end lineindex.Position, err error) {
	if r.Start < 0 || r.End < r.Start || r.End > m.Index.Len() {
		return start, end, fmt.Errorf("range %v in document of %d bytes: %w", r, m.Index.Len(), ErrOutOfRange)
	}
	if start, err = m.Index.PositionForOffset(r.Start); err != nil {
		return start, end, err
	}
	if end, err = m.Index.PositionForOffset(r.End); err != nil {
		return start, end, err
	}
	return start, end, nil
}

// Relocate moves h to r, recomputing its positions.
func (m Mapper) Relocate(h HighlightRange, r syntax.ByteRange) (HighlightRange, error) {
	start, end, err := m.Locate(r)
	if err != nil {
		return h, err
	}
	h.Position, h.End, h.Range, h.Length = start, end, r, r.Len()
	return h, nil
}

// SortRanges orders ranges by start offset, wider first for equal starts.
// The sort is stable.
func SortRanges(ranges []HighlightRange) {
	sort.SliceStable(ranges, func(i, j int) bool {
		a, b := ranges[i].Range, ranges[j].Range
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End > b.End
	})
}

// InLines returns the ranges that intersect lines [from, to], in order.
func InLines(ranges []HighlightRange, from, to uint32) []HighlightRange {
	var out []HighlightRange
	for _, h := range ranges {
		if h.Position.Line > to {
			continue
		}
		// End is exclusive: a range ending at column 0 of a line does not
		// touch it.
		last := h.End.Line
		if h.End.Column == 0 && last > h.Position.Line {
			last--
		}
		if last < from {
			continue
		}
		out = append(out, h)
	}
	return out
}
