package rope

// chunkIterFrame represents a position in the tree traversal for chunk iteration.
type chunkIterFrame struct {
	node   *Node
	next   int        // Next child or chunk index to visit
	offset ByteOffset // Absolute byte offset of the next child or chunk
}

// ChunkIterator iterates over chunks in a rope in text order.
type ChunkIterator struct {
	stack      []chunkIterFrame
	chunk      Chunk
	chunkStart ByteOffset
}

// Chunks returns an iterator over all chunks in the rope.
func (r Rope) Chunks() *ChunkIterator {
	it := &ChunkIterator{stack: make([]chunkIterFrame, 0, 16)}
	if r.root != nil {
		it.stack = append(it.stack, chunkIterFrame{node: r.root})
	}
	return it
}

// Next advances to the next non-empty chunk.
// Returns true if there is a chunk, false if iteration is complete.
func (it *ChunkIterator) Next() bool {
	for len(it.stack) > 0 {
		frame := &it.stack[len(it.stack)-1]
		node := frame.node

		if node.IsLeaf() {
			if frame.next < len(node.chunks) {
				chunk := node.chunks[frame.next]
				start := frame.offset
				frame.next++
				frame.offset += ByteOffset(chunk.Len())
				if chunk.IsEmpty() {
					continue
				}
				it.chunk = chunk
				it.chunkStart = start
				return true
			}
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		if frame.next < len(node.children) {
			child := chunkIterFrame{node: node.children[frame.next], offset: frame.offset}
			frame.offset += node.childSummaries[frame.next].Bytes
			frame.next++
			it.stack = append(it.stack, child)
			continue
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	return false
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk {
	return it.chunk
}

// Offset returns the byte offset of the start of the current chunk.
func (it *ChunkIterator) Offset() ByteOffset {
	return it.chunkStart
}
