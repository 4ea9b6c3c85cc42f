package rope

import "strings"

// Tree structure constants
const (
	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxChunksPerLeaf is the maximum chunks in a leaf node.
	MaxChunksPerLeaf = 4
)

// Node represents a node in the rope B+ tree.
// Leaf nodes (height == 0) contain text chunks.
// Internal nodes (height > 0) contain child node references.
type Node struct {
	height  uint8
	summary TextSummary

	// Internal node fields (height > 0)
	children       []*Node
	childSummaries []TextSummary

	// Leaf node fields (height == 0)
	chunks []Chunk
}

// newLeafNode creates an empty leaf node.
func newLeafNode() *Node {
	return &Node{summary: emptySummary}
}

// newLeafNodeWithChunks creates a leaf node with the given chunks.
func newLeafNodeWithChunks(chunks []Chunk) *Node {
	n := &Node{chunks: chunks, summary: emptySummary}
	for _, chunk := range chunks {
		n.summary = n.summary.Add(chunk.Summary())
	}
	return n
}

// newInternalNode creates an internal node with the given children, which
// must all have the same height.
func newInternalNode(children []*Node) *Node {
	if len(children) == 0 {
		return newLeafNode()
	}

	n := &Node{
		height:         children[0].height + 1,
		summary:        emptySummary,
		children:       children,
		childSummaries: make([]TextSummary, len(children)),
	}
	for i, child := range children {
		n.childSummaries[i] = child.summary
		n.summary = n.summary.Add(child.summary)
	}
	return n
}

// IsLeaf returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.height == 0
}

// Len returns the byte length of text in this subtree.
func (n *Node) Len() ByteOffset {
	return n.summary.Bytes
}

// appendTo appends all text in this subtree to the builder.
func (n *Node) appendTo(sb *strings.Builder) {
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			sb.WriteString(chunk.String())
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange appends text in the byte range [start, end) to the builder.
func (n *Node) appendRange(sb *strings.Builder, start, end ByteOffset) {
	if start >= end {
		return
	}

	if n.IsLeaf() {
		var offset ByteOffset
		for _, chunk := range n.chunks {
			chunkEnd := offset + ByteOffset(chunk.Len())
			if chunkEnd > start && offset < end {
				lo := max(start, offset) - offset
				hi := min(end, chunkEnd) - offset
				sb.WriteString(chunk.String()[lo:hi])
			}
			if chunkEnd >= end {
				return
			}
			offset = chunkEnd
		}
		return
	}

	var offset ByteOffset
	for i, child := range n.children {
		childEnd := offset + n.childSummaries[i].Bytes
		if childEnd > start && offset < end {
			child.appendRange(sb, max(start, offset)-offset, min(end, childEnd)-offset)
		}
		if childEnd >= end {
			return
		}
		offset = childEnd
	}
}

// utf16Before returns the number of UTF-16 code units in [0, offset).
func (n *Node) utf16Before(offset ByteOffset) int64 {
	var units int64
	for !n.IsLeaf() {
		i, local := n.findChildByOffset(offset)
		for j := 0; j < i; j++ {
			units += n.childSummaries[j].UTF16Units
		}
		n = n.children[i]
		offset = local
	}
	for _, chunk := range n.chunks {
		if offset <= 0 {
			break
		}
		if ByteOffset(chunk.Len()) <= offset {
			units += chunk.Summary().UTF16Units
			offset -= ByteOffset(chunk.Len())
			continue
		}
		units += ComputeSummary(chunk.String()[:offset]).UTF16Units
		break
	}
	return units
}

// split splits the node at the given byte offset.
// Returns two nodes: left contains [0, offset), right contains [offset, end).
func (n *Node) split(offset ByteOffset) (*Node, *Node) {
	if offset <= 0 {
		return newLeafNode(), n
	}
	if offset >= n.Len() {
		return n, newLeafNode()
	}

	if n.IsLeaf() {
		var left, right []Chunk
		var pos ByteOffset
		for _, chunk := range n.chunks {
			chunkLen := ByteOffset(chunk.Len())
			switch {
			case pos+chunkLen <= offset:
				left = append(left, chunk)
			case pos >= offset:
				right = append(right, chunk)
			default:
				l, r := chunk.Split(int(offset - pos))
				left = append(left, l)
				right = append(right, r)
			}
			pos += chunkLen
		}
		return newLeafNodeWithChunks(left), newLeafNodeWithChunks(right)
	}

	i, local := n.findChildByOffset(offset)
	childLeft, childRight := n.children[i].split(local)

	left := childLeft
	if i > 0 {
		left = concat(newInternalNode(append([]*Node(nil), n.children[:i]...)), childLeft)
	}
	right := childRight
	if i < len(n.children)-1 {
		right = concat(childRight, newInternalNode(append([]*Node(nil), n.children[i+1:]...)))
	}
	return trim(left), trim(right)
}

// trim removes single-child internal nodes from the top of the tree.
func trim(n *Node) *Node {
	for !n.IsLeaf() && len(n.children) == 1 {
		n = n.children[0]
	}
	return n
}

// packChildren turns same-height children into one internal node, or a
// parent of two when they do not fit.
func packChildren(children []*Node) *Node {
	if len(children) <= MaxChildren {
		return newInternalNode(children)
	}
	mid := len(children) / 2
	left := append([]*Node(nil), children[:mid]...)
	right := append([]*Node(nil), children[mid:]...)
	return newInternalNode([]*Node{newInternalNode(left), newInternalNode(right)})
}

// concat joins two trees keeping every leaf at the same depth. The result is
// as tall as the taller input or one level more.
func concat(left, right *Node) *Node {
	if left == nil || left.Len() == 0 {
		if right == nil {
			return newLeafNode()
		}
		return right
	}
	if right == nil || right.Len() == 0 {
		return left
	}

	switch {
	case left.height == right.height:
		if left.IsLeaf() {
			return concatLeaves(left, right)
		}
		children := make([]*Node, 0, len(left.children)+len(right.children))
		children = append(children, left.children...)
		children = append(children, right.children...)
		return packChildren(children)

	case left.height > right.height:
		last := len(left.children) - 1
		merged := concat(left.children[last], right)
		children := append([]*Node(nil), left.children[:last]...)
		if merged.height == left.height {
			children = append(children, merged.children...)
		} else {
			children = append(children, merged)
		}
		return packChildren(children)

	default:
		merged := concat(left, right.children[0])
		var children []*Node
		if merged.height == right.height {
			children = append(children, merged.children...)
		} else {
			children = append(children, merged)
		}
		children = append(children, right.children[1:]...)
		return packChildren(children)
	}
}

// concatLeaves concatenates two leaf nodes. Small trailing and leading chunks
// are merged so repeated edits do not fragment the text.
func concatLeaves(left, right *Node) *Node {
	chunks := make([]Chunk, 0, len(left.chunks)+len(right.chunks))
	chunks = append(chunks, left.chunks...)

	rest := right.chunks
	if last := len(chunks) - 1; last >= 0 && len(rest) > 0 &&
		chunks[last].Len()+rest[0].Len() <= MaxChunkSize &&
		(chunks[last].Len() < MinChunkSize || rest[0].Len() < MinChunkSize) {
		chunks[last] = NewChunk(chunks[last].String() + rest[0].String())
		rest = rest[1:]
	}
	chunks = append(chunks, rest...)

	if len(chunks) <= MaxChunksPerLeaf {
		return newLeafNodeWithChunks(chunks)
	}
	mid := len(chunks) / 2
	return newInternalNode([]*Node{
		newLeafNodeWithChunks(append([]Chunk(nil), chunks[:mid]...)),
		newLeafNodeWithChunks(append([]Chunk(nil), chunks[mid:]...)),
	})
}

// findChildByOffset finds the child containing the given byte offset.
// Returns the child index and the offset within that child.
func (n *Node) findChildByOffset(offset ByteOffset) (int, ByteOffset) {
	var pos ByteOffset
	for i, summary := range n.childSummaries {
		if pos+summary.Bytes > offset {
			return i, offset - pos
		}
		pos += summary.Bytes
	}

	// Offset is at or past the end
	last := len(n.children) - 1
	return last, offset - (pos - n.childSummaries[last].Bytes)
}
