package lineindex

// LineEnding identifies a line terminator style.
type LineEnding uint8

// Line ending styles.
const (
	LF   LineEnding = iota // "\n"
	CRLF                   // "\r\n"
	CR                     // "\r"
)

// DefaultDetectLines is the number of lines DetectLineEnding inspects when
// called with a non-positive limit.
const DefaultDetectLines = 20

// String returns the terminator the style stands for.
func (le LineEnding) String() string {
	switch le {
	case CRLF:
		return "\r\n"
	case CR:
		return "\r"
	default:
		return "\n"
	}
}

// Name returns a short name such as "crlf".
func (le LineEnding) Name() string {
	switch le {
	case CRLF:
		return "crlf"
	case CR:
		return "cr"
	default:
		return "lf"
	}
}

// DetectLineEnding returns the most frequent terminator among the first
// maxLines lines of text. Ties prefer LF, then CRLF, then CR; text without
// terminators reports LF.
func DetectLineEnding(text string, maxLines int) LineEnding {
	if maxLines <= 0 {
		maxLines = DefaultDetectLines
	}

	var counts [3]int
	seen := 0
	for i := 0; i < len(text) && seen < maxLines; i++ {
		switch text[i] {
		case '\n':
			counts[LF]++
			seen++
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				counts[CRLF]++
				i++
			} else {
				counts[CR]++
			}
			seen++
		}
	}

	best := LF
	for _, le := range []LineEnding{CRLF, CR} {
		if counts[le] > counts[best] {
			best = le
		}
	}
	return best
}

// LineEnding returns the dominant terminator of the indexed text, read from
// its first lines.
func (idx *Index) LineEnding(src TextSource) LineEnding {
	lines := uint32(DefaultDetectLines)
	if lines >= idx.LineCount() {
		return DetectLineEnding(src.Slice(0, src.Len()), DefaultDetectLines)
	}
	end, err := idx.OffsetOfLine(lines)
	if err != nil {
		return LF
	}
	return DetectLineEnding(src.Slice(0, end), DefaultDetectLines)
}
