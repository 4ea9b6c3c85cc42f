package rope

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Builder provides efficient incremental construction of a rope.
// It buffers writes and builds the rope structure when Build() is called.
type Builder struct {
	chunks   []Chunk
	buffer   strings.Builder
	totalLen int
}

// NewBuilder creates a new rope builder.
func NewBuilder() *Builder {
	return &Builder{chunks: make([]Chunk, 0, 64)}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) (int, error) {
	b.totalLen += len(s)
	b.buffer.WriteString(s)
	if b.buffer.Len() >= MaxChunkSize*2 {
		b.flush(false)
	}
	return len(s), nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	return b.WriteString(string(p))
}

// ReadFrom implements io.ReaderFrom.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// flush moves buffered text into chunks. Unless final, an incomplete UTF-8
// sequence at the end of the buffer stays buffered so no rune straddles two
// chunks.
func (b *Builder) flush(final bool) {
	s := b.buffer.String()
	if len(s) == 0 {
		return
	}

	cut := len(s)
	if !final {
		cut = completePrefix(s)
	}
	b.chunks = append(b.chunks, splitIntoChunks(s[:cut])...)
	b.buffer.Reset()
	b.buffer.WriteString(s[cut:])
}

// completePrefix returns the length of s without a trailing partial rune.
func completePrefix(s string) int {
	for i := len(s) - 1; i >= 0 && i >= len(s)-utf8.UTFMax; i-- {
		if isUTF8Start(s[i]) {
			if utf8.FullRuneInString(s[i:]) {
				return len(s)
			}
			return i
		}
	}
	return len(s)
}

// Len returns the total number of bytes written.
func (b *Builder) Len() int {
	return b.totalLen
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.chunks = nil
	b.buffer.Reset()
	b.totalLen = 0
}

// Build creates the rope from accumulated data.
// After calling Build, the builder is reset.
func (b *Builder) Build() Rope {
	b.flush(true)
	chunks := b.chunks
	b.Reset()
	return buildFromChunks(chunks)
}
