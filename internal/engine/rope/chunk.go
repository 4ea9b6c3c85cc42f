package rope

// Chunk size constants control the granularity of text storage.
const (
	// MinChunkSize is the minimum bytes per chunk (except for the last chunk).
	MinChunkSize = 128

	// MaxChunkSize is the maximum bytes per chunk before splitting.
	MaxChunkSize = 256

	// TargetChunkSize is the preferred chunk size when building.
	TargetChunkSize = (MinChunkSize + MaxChunkSize) / 2
)

// Chunk represents a bounded string stored in leaf nodes.
// Chunks are immutable once created.
type Chunk struct {
	data    string
	summary TextSummary
}

// NewChunk creates a chunk from a string.
func NewChunk(s string) Chunk {
	return Chunk{
		data:    s,
		summary: ComputeSummary(s),
	}
}

// String returns the chunk's text.
func (c Chunk) String() string {
	return c.data
}

// Summary returns the chunk's precomputed metrics.
func (c Chunk) Summary() TextSummary {
	return c.summary
}

// Len returns the byte length of the chunk.
func (c Chunk) Len() int {
	return len(c.data)
}

// IsEmpty returns true if the chunk contains no text.
func (c Chunk) IsEmpty() bool {
	return len(c.data) == 0
}

// Split splits a chunk at byte offset, returning two chunks.
func (c Chunk) Split(offset int) (Chunk, Chunk) {
	if offset <= 0 {
		return Chunk{}, c
	}
	if offset >= len(c.data) {
		return c, Chunk{}
	}
	return NewChunk(c.data[:offset]), NewChunk(c.data[offset:])
}

// splitIntoChunks splits a string into chunks of appropriate size.
func splitIntoChunks(s string) []Chunk {
	if len(s) == 0 {
		return nil
	}

	var chunks []Chunk
	for len(s) > MaxChunkSize {
		at := findSplitPoint(s, TargetChunkSize)
		chunks = append(chunks, NewChunk(s[:at]))
		s = s[at:]
	}
	return append(chunks, NewChunk(s))
}

// findSplitPoint picks a chunk boundary near target. It prefers the byte after
// a line terminator and never splits a UTF-8 sequence or a "\r\n" pair.
func findSplitPoint(s string, target int) int {
	if target >= len(s) {
		return len(s)
	}

	lo := max(1, target-MinChunkSize/4)
	hi := min(len(s)-1, target+MinChunkSize/4)
	for i := target; i < hi; i++ {
		if s[i] == '\n' {
			return i + 1
		}
	}
	for i := target - 1; i >= lo; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}

	pos := target
	for pos > lo && (!isUTF8Start(s[pos]) || s[pos-1] == '\r' && s[pos] == '\n') {
		pos--
	}
	return pos
}

// isUTF8Start returns true if the byte is the start of a UTF-8 sequence.
func isUTF8Start(b byte) bool {
	return b&0xC0 != 0x80
}
