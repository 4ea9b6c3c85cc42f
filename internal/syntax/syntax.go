package syntax

import (
	"context"
	"fmt"

	"github.com/dshills/textstore/internal/engine/tracking"
)

// ByteOffset is a byte position in the text.
type ByteOffset = tracking.ByteOffset

// ByteRange is a half-open byte range [Start, End).
type ByteRange = tracking.Range

// Delta is the edit description handed to incremental parsers.
type Delta = tracking.ParserDelta

// Source provides read access to the document text. rope.Rope satisfies it.
type Source interface {
	Len() ByteOffset
	Slice(start, end ByteOffset) string
}

// Text returns the whole content of src.
func Text(src Source) string {
	return src.Slice(0, src.Len())
}

// Tree is the parse state a backend keeps between edits. Only the backend
// that produced a tree knows how to read it.
type Tree interface {
	// Len returns the length of the text the tree was built from.
	Len() ByteOffset
}

// CaptureSpan is a byte range tagged with a capture name such as
// "keyword" or "string.escape".
type CaptureSpan struct {
	Range ByteRange
	Name  string
}

// String returns a compact description of the span.
func (c CaptureSpan) String() string {
	return fmt.Sprintf("%s@%s", c.Name, c.Range)
}

// ParseResult is the outcome of a parse.
type ParseResult struct {
	Tree Tree

	// ChangedRanges lists the post-edit byte ranges whose captures may
	// differ from the previous tree. Sorted and non-overlapping.
	ChangedRanges []ByteRange
}

// Parser builds or updates a syntax tree.
type Parser interface {
	// Parse parses src. When old is nil the whole document is parsed and
	// reported as changed. Otherwise old is the tree for the pre-edit text
	// and delta describes the edit that produced src.
	Parse(ctx context.Context, src Source, old Tree, delta *Delta) (ParseResult, error)
}

// Querier extracts capture spans from a tree.
type Querier interface {
	// Captures returns the spans intersecting r, in document order.
	Captures(ctx context.Context, tree Tree, src Source, r ByteRange) ([]CaptureSpan, error)
}

// Backend is a parser that can also answer capture queries.
type Backend interface {
	Parser
	Querier

	// Name identifies the backend and language, e.g. "treesitter/go".
	Name() string
}

// WholeDocument returns the changed-range list covering all of src.
func WholeDocument(src Source) []ByteRange {
	return []ByteRange{{Start: 0, End: src.Len()}}
}

// Clip restricts spans to r, dropping spans that fall outside it or become
// empty.
func Clip(spans []CaptureSpan, r ByteRange) []CaptureSpan {
	out := spans[:0]
	for _, s := range spans {
		start := max(s.Range.Start, r.Start)
		end := min(s.Range.End, r.End)
		if start >= end {
			continue
		}
		s.Range = ByteRange{Start: start, End: end}
		out = append(out, s)
	}
	return out
}
