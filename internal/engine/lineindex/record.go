package lineindex

import (
	"fmt"
	"strings"
)

// ByteOffset is a byte position in the text.
type ByteOffset = int64

// Record describes a single line.
type Record struct {
	ByteLength       ByteOffset // Content length, terminator excluded
	TerminatorLength uint8      // 0, 1 ("\n" or "\r") or 2 ("\r\n")
}

// TotalLength returns the line length including its terminator.
func (r Record) TotalLength() ByteOffset {
	return r.ByteLength + ByteOffset(r.TerminatorLength)
}

// String returns a compact representation such as "5+1".
func (r Record) String() string {
	return fmt.Sprintf("%d+%d", r.ByteLength, r.TerminatorLength)
}

// maxColumn is the largest column that still addresses this line.
func (r Record) maxColumn() ByteOffset {
	if r.TerminatorLength == 0 {
		return r.ByteLength
	}
	return r.ByteLength + ByteOffset(r.TerminatorLength) - 1
}

// Position is a zero-based line and byte column.
type Position struct {
	Line   uint32
	Column uint32
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// TextSource provides read access to the text an index describes.
// rope.Rope satisfies it.
type TextSource interface {
	Len() ByteOffset
	Slice(start, end ByteOffset) string
}

// StringSource adapts a plain string to TextSource.
type StringSource string

// Len returns the byte length of the string.
func (s StringSource) Len() ByteOffset { return ByteOffset(len(s)) }

// Slice returns s[start:end], clamped to the string bounds.
func (s StringSource) Slice(start, end ByteOffset) string {
	if start < 0 {
		start = 0
	}
	if end > ByteOffset(len(s)) {
		end = ByteOffset(len(s))
	}
	if start >= end {
		return ""
	}
	return string(s[start:end])
}

// scanRecords splits text into line records.
//
// When final is true the text runs to the end of the document and the
// trailing, possibly empty, line is included. Otherwise the text is followed
// by more lines and must end exactly after a terminator.
func scanRecords(text string, final bool) ([]Record, error) {
	records := make([]Record, 0, strings.Count(text, "\n")+1)
	start := 0
	for i := 0; i < len(text); {
		switch text[i] {
		case '\n':
			records = append(records, Record{ByteLength: ByteOffset(i - start), TerminatorLength: 1})
			i++
			start = i
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				records = append(records, Record{ByteLength: ByteOffset(i - start), TerminatorLength: 2})
				i += 2
			} else {
				records = append(records, Record{ByteLength: ByteOffset(i - start), TerminatorLength: 1})
				i++
			}
			start = i
		default:
			i++
		}
	}

	rest := len(text) - start
	if final {
		records = append(records, Record{ByteLength: ByteOffset(rest)})
	} else if rest != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes without terminator", ErrIndexDesync, rest)
	}
	return records, nil
}
