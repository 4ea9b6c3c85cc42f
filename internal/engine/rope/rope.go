package rope

import (
	"io"
	"math/bits"
	"strings"
)

// Rope is an immutable rope data structure for efficient text storage.
// Operations return new Rope values; the original is never modified.
// This enables cheap snapshots and thread-safe concurrent read access.
type Rope struct {
	root *Node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeafNode()}
}

// FromString creates a rope from a string.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return buildFromChunks(splitIntoChunks(s))
}

// FromReader creates a rope from an io.Reader.
func FromReader(r io.Reader) (Rope, error) {
	var builder Builder
	if _, err := io.Copy(&builder, r); err != nil {
		return Rope{}, err
	}
	return builder.Build(), nil
}

// buildFromChunks builds a balanced rope from a slice of chunks.
func buildFromChunks(chunks []Chunk) Rope {
	if len(chunks) == 0 {
		return New()
	}

	var nodes []*Node
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		end := min(i+MaxChunksPerLeaf, len(chunks))
		nodes = append(nodes, newLeafNodeWithChunks(append([]Chunk(nil), chunks[i:end]...)))
	}

	for len(nodes) > 1 {
		var parents []*Node
		for i := 0; i < len(nodes); i += MaxChildren {
			end := min(i+MaxChildren, len(nodes))
			parents = append(parents, newInternalNode(append([]*Node(nil), nodes[i:end]...)))
		}
		nodes = parents
	}
	return Rope{root: nodes[0]}
}

// Len returns the total byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.Len()
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// String returns the full text as a string.
// Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}

	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.appendTo(&sb)
	return sb.String()
}

// Slice returns the text in the byte range [start, end). The range is clamped
// to the rope.
func (r Rope) Slice(start, end ByteOffset) string {
	start, end = r.clamp(start, end)
	if r.root == nil || start >= end {
		return ""
	}

	var sb strings.Builder
	sb.Grow(int(end - start))
	r.root.appendRange(&sb, start, end)
	return sb.String()
}

// WriteTo writes the full text to w chunk by chunk.
func (r Rope) WriteTo(w io.Writer) (int64, error) {
	var total int64
	it := r.Chunks()
	for it.Next() {
		n, err := io.WriteString(w, it.Chunk().String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// UTF16Len returns the number of UTF-16 code units in [start, end).
func (r Rope) UTF16Len(start, end ByteOffset) int64 {
	start, end = r.clamp(start, end)
	if r.root == nil || start >= end {
		return 0
	}
	return r.root.utf16Before(end) - r.root.utf16Before(start)
}

// Insert inserts text at the given byte offset.
// Returns a new rope; original is unchanged.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.root == nil || r.Len() == 0 {
		return FromString(text)
	}
	if offset <= 0 {
		return FromString(text).Concat(r)
	}
	if offset >= r.Len() {
		return r.Concat(FromString(text))
	}

	left, right := r.Split(offset)
	return left.Concat(FromString(text)).Concat(right)
}

// Delete removes text in the byte range [start, end).
// Returns a new rope; original is unchanged.
func (r Rope) Delete(start, end ByteOffset) Rope {
	start, end = r.clamp(start, end)
	if r.root == nil || start >= end {
		return r
	}

	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// Replace replaces text in the byte range [start, end) with new text.
// Returns a new rope; original is unchanged.
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	start, end = r.clamp(start, end)
	if start >= end {
		return r.Insert(start, text)
	}

	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(FromString(text)).Concat(right)
}

// Split splits the rope at offset, returning two ropes.
// Left rope contains [0, offset), right contains [offset, end).
func (r Rope) Split(offset ByteOffset) (Rope, Rope) {
	if r.root == nil || offset <= 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}

	leftRoot, rightRoot := r.root.split(offset)
	return Rope{root: leftRoot}, Rope{root: rightRoot}
}

// Concat concatenates two ropes.
// Returns a new rope; originals are unchanged.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil || r.Len() == 0 {
		return other
	}
	if other.root == nil || other.Len() == 0 {
		return r
	}
	return rebalance(Rope{root: concat(r.root, other.root)})
}

// rebalance rebuilds r when edits have left the tree much taller than a
// freshly built one of the same length.
func rebalance(r Rope) Rope {
	limit := 2*bits.Len64(uint64(r.Len()/MinChunkSize+1)) + 4
	if int(r.root.height) <= limit {
		return r
	}
	return FromString(r.String())
}

// Summary returns the aggregated metrics for the entire rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return emptySummary
	}
	return r.root.summary
}

// Equals returns true if two ropes contain the same text.
// Chunk boundaries may differ between ropes with equal content.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.root == other.root {
		return true
	}

	a, b := r.Chunks(), other.Chunks()
	var sa, sb string
	for {
		if sa == "" {
			if !a.Next() {
				return sb == "" && !b.Next()
			}
			sa = a.Chunk().String()
		}
		if sb == "" {
			if !b.Next() {
				return false
			}
			sb = b.Chunk().String()
		}
		n := min(len(sa), len(sb))
		if sa[:n] != sb[:n] {
			return false
		}
		sa, sb = sa[n:], sb[n:]
	}
}

func (r Rope) clamp(start, end ByteOffset) (ByteOffset, ByteOffset) {
	n := r.Len()
	start = max(0, min(start, n))
	end = max(0, min(end, n))
	return start, end
}
