package rope

import "unicode/utf8"

// ByteOffset represents an absolute byte position in the rope.
type ByteOffset = int64

// TextSummary holds aggregated metrics for a text span.
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes ByteOffset

	// UTF16Units is the UTF-16 code unit count.
	UTF16Units int64

	// ASCII is true if every byte is below 0x80.
	ASCII bool
}

// emptySummary is the identity of Add.
var emptySummary = TextSummary{ASCII: true}

// Add combines two summaries.
func (s TextSummary) Add(other TextSummary) TextSummary {
	return TextSummary{
		Bytes:      s.Bytes + other.Bytes,
		UTF16Units: s.UTF16Units + other.UTF16Units,
		ASCII:      s.ASCII && other.ASCII,
	}
}

// ComputeSummary calculates metrics for a string. Invalid UTF-8 counts one
// code unit per byte.
func ComputeSummary(s string) TextSummary {
	sum := TextSummary{Bytes: ByteOffset(len(s)), ASCII: true}
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			sum.UTF16Units++
			i++
			continue
		}
		sum.ASCII = false
		r, size := utf8.DecodeRuneInString(s[i:])
		sum.UTF16Units += int64(utf16Len(r))
		i += size
	}
	return sum
}

// utf16Len returns the number of UTF-16 code units needed for r.
func utf16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}
