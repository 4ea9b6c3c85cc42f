package lsp

import (
	"errors"
	"fmt"

	golsp "github.com/sourcegraph/go-lsp"

	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/engine/textstore"
	"github.com/dshills/textstore/internal/renderer/highlight"
	"github.com/dshills/textstore/internal/syntax"
)

// ErrInvalidPosition is returned for negative LSP positions.
var ErrInvalidPosition = errors.New("invalid lsp position")

// Document is the read side of a text store. *textstore.Store satisfies it.
type Document interface {
	Len() lineindex.ByteOffset
	LineCount() uint32
	LineText(line uint32) (string, error)
	OffsetOfLine(line uint32) (lineindex.ByteOffset, error)
	PositionForOffset(off lineindex.ByteOffset) (lineindex.Position, error)
	UTF16Len(start, end lineindex.ByteOffset) int64
}

// Converter translates between byte offsets and LSP positions, whose
// Character counts UTF-16 code units.
type Converter struct {
	Store Document
}

// Position converts a byte offset to an LSP position.
func (c Converter) Position(off lineindex.ByteOffset) (golsp.Position, error) {
	pos, err := c.Store.PositionForOffset(off)
	if err != nil {
		return golsp.Position{}, err
	}
	return c.fromLinePosition(pos)
}

// Range converts a byte range to an LSP range.
func (c Converter) Range(r syntax.ByteRange) (golsp.Range, error) {
	start, err := c.Position(r.Start)
	if err != nil {
		return golsp.Range{}, fmt.Errorf("start: %w", err)
	}
	end, err := c.Position(r.End)
	if err != nil {
		return golsp.Range{}, fmt.Errorf("end: %w", err)
	}
	return golsp.Range{Start: start, End: end}, nil
}

// HighlightRange converts a highlight to an LSP range. Lines the document no
// longer has give a zero character.
func (c Converter) HighlightRange(h highlight.HighlightRange) golsp.Range {
	start, _ := c.fromLinePosition(h.Position)
	end, _ := c.fromLinePosition(h.End)
	return golsp.Range{Start: start, End: end}
}

// Offset converts an LSP position to a byte offset. Characters past the end
// of the line clamp to the line end, lines past the end clamp to the
// document end.
func (c Converter) Offset(pos golsp.Position) (lineindex.ByteOffset, error) {
	if pos.Line < 0 || pos.Character < 0 {
		return 0, fmt.Errorf("%w: %d:%d", ErrInvalidPosition, pos.Line, pos.Character)
	}
	if pos.Line >= int(c.Store.LineCount()) {
		return c.Store.Len(), nil
	}

	line := uint32(pos.Line)
	start, err := c.Store.OffsetOfLine(line)
	if err != nil {
		return 0, err
	}
	text, err := c.Store.LineText(line)
	if err != nil {
		return 0, err
	}
	return start + lineindex.ByteOffset(utf16ToByteOffset(text, pos.Character)), nil
}

// ChangeEvent describes an applied edit as an incremental LSP content
// change. It must be called before any later edit is applied.
func (c Converter) ChangeEvent(res textstore.EditResult) (golsp.TextDocumentContentChangeEvent, error) {
	start, err := c.Position(res.Edit.Start)
	if err != nil {
		return golsp.TextDocumentContentChangeEvent{}, err
	}
	old := res.Change.OldText
	end := advance(start, old)
	return golsp.TextDocumentContentChangeEvent{
		Range:       &golsp.Range{Start: start, End: end},
		RangeLength: uint(utf16LenForString(old)),
		Text:        res.Edit.Text,
	}, nil
}

func (c Converter) fromLinePosition(pos lineindex.Position) (golsp.Position, error) {
	lineStart, err := c.Store.OffsetOfLine(pos.Line)
	if err != nil {
		return golsp.Position{Line: int(pos.Line)}, err
	}
	units := c.Store.UTF16Len(lineStart, lineStart+lineindex.ByteOffset(pos.Column))
	return golsp.Position{Line: int(pos.Line), Character: int(units)}, nil
}

// advance returns the position reached after text starting at pos.
func advance(pos golsp.Position, text string) golsp.Position {
	idx := lineindex.Build(text)
	last := idx.LineCount() - 1
	if last == 0 {
		pos.Character += utf16LenForString(text)
		return pos
	}
	tail, _ := idx.OffsetOfLine(last)
	return golsp.Position{
		Line:      pos.Line + int(last),
		Character: utf16LenForString(text[tail:]),
	}
}

// utf16LenForString counts the UTF-16 code units of s.
func utf16LenForString(s string) int {
	count := 0
	for _, r := range s {
		if r >= 0x10000 {
			count += 2
		} else {
			count++
		}
	}
	return count
}

// utf16ToByteOffset converts a UTF-16 offset to a byte offset within s. An
// offset inside a surrogate pair rounds up to the following rune.
func utf16ToByteOffset(s string, utf16Off int) int {
	if utf16Off <= 0 {
		return 0
	}

	count := 0
	for i, r := range s {
		if count >= utf16Off {
			return i
		}
		if r >= 0x10000 {
			count += 2
		} else {
			count++
		}
	}
	return len(s)
}
