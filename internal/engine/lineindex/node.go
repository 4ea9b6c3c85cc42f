package lineindex

// Tree structure constants.
const (
	// maxChildren is the maximum children per internal node before splitting.
	maxChildren = 8

	// maxRecordsPerLeaf is the maximum line records in a leaf node.
	maxRecordsPerLeaf = 64
)

// summary aggregates the records of a subtree.
type summary struct {
	Lines  uint32
	Length ByteOffset
}

func (s summary) add(other summary) summary {
	return summary{Lines: s.Lines + other.Lines, Length: s.Length + other.Length}
}

// node is a node of the line B+ tree. Leaves (height == 0) hold records,
// internal nodes hold children. Nodes are never modified once built; every
// edit produces new nodes along the affected path.
type node struct {
	height  uint8
	summary summary

	// Internal node fields (height > 0)
	children       []*node
	childSummaries []summary

	// Leaf node fields (height == 0)
	records []Record
}

// newLeaf creates a leaf owning the given records.
func newLeaf(records []Record) *node {
	n := &node{records: records}
	for _, r := range records {
		n.summary = n.summary.add(summary{Lines: 1, Length: r.TotalLength()})
	}
	return n
}

// newInternal creates an internal node owning the given children, which must
// all have the same height.
func newInternal(children []*node) *node {
	n := &node{
		height:         children[0].height + 1,
		children:       children,
		childSummaries: make([]summary, len(children)),
	}
	for i, child := range children {
		n.childSummaries[i] = child.summary
		n.summary = n.summary.add(child.summary)
	}
	return n
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

func (n *node) empty() bool {
	return n == nil || n.summary.Lines == 0
}

// buildFromRecords builds a balanced tree bottom-up.
func buildFromRecords(records []Record) *node {
	if len(records) == 0 {
		return newLeaf(nil)
	}

	var nodes []*node
	for i := 0; i < len(records); i += maxRecordsPerLeaf {
		end := min(i+maxRecordsPerLeaf, len(records))
		leafRecords := make([]Record, end-i)
		copy(leafRecords, records[i:end])
		nodes = append(nodes, newLeaf(leafRecords))
	}

	for len(nodes) > 1 {
		var parents []*node
		for i := 0; i < len(nodes); i += maxChildren {
			end := min(i+maxChildren, len(nodes))
			children := make([]*node, end-i)
			copy(children, nodes[i:end])
			parents = append(parents, newInternal(children))
		}
		nodes = parents
	}
	return nodes[0]
}

// packLeaves turns records into one leaf, or two leaves under a new parent
// when they do not fit.
func packLeaves(records []Record) *node {
	if len(records) <= maxRecordsPerLeaf {
		return newLeaf(records)
	}
	mid := len(records) / 2
	left := append([]Record(nil), records[:mid]...)
	right := append([]Record(nil), records[mid:]...)
	return newInternal([]*node{newLeaf(left), newLeaf(right)})
}

// packChildren turns same-height children into one internal node, or two
// under a new parent when they do not fit.
func packChildren(children []*node) *node {
	if len(children) <= maxChildren {
		return newInternal(children)
	}
	mid := len(children) / 2
	left := append([]*node(nil), children[:mid]...)
	right := append([]*node(nil), children[mid:]...)
	return newInternal([]*node{newInternal(left), newInternal(right)})
}

// concat joins two trees. The result has the height of the taller input or
// one more; all leaves stay at the same depth.
func concat(left, right *node) *node {
	if left.empty() {
		if right == nil {
			return newLeaf(nil)
		}
		return right
	}
	if right.empty() {
		return left
	}

	switch {
	case left.height == right.height:
		if left.isLeaf() {
			records := make([]Record, 0, len(left.records)+len(right.records))
			records = append(records, left.records...)
			records = append(records, right.records...)
			return packLeaves(records)
		}
		children := make([]*node, 0, len(left.children)+len(right.children))
		children = append(children, left.children...)
		children = append(children, right.children...)
		return packChildren(children)

	case left.height > right.height:
		last := len(left.children) - 1
		merged := concat(left.children[last], right)
		children := make([]*node, 0, len(left.children)+1)
		children = append(children, left.children[:last]...)
		if merged.height == left.height {
			children = append(children, merged.children...)
		} else {
			children = append(children, merged)
		}
		return packChildren(children)

	default:
		merged := concat(left, right.children[0])
		children := make([]*node, 0, len(right.children)+1)
		if merged.height == right.height {
			children = append(children, merged.children...)
		} else {
			children = append(children, merged)
		}
		children = append(children, right.children[1:]...)
		return packChildren(children)
	}
}

// split divides the tree before line: the left tree holds lines [0, line),
// the right tree the rest.
func split(n *node, line uint32) (*node, *node) {
	if line == 0 {
		return newLeaf(nil), n
	}
	if line >= n.summary.Lines {
		return n, newLeaf(nil)
	}

	if n.isLeaf() {
		left := append([]Record(nil), n.records[:line]...)
		right := append([]Record(nil), n.records[line:]...)
		return newLeaf(left), newLeaf(right)
	}

	idx, local := n.childByLine(line)
	childLeft, childRight := split(n.children[idx], local)

	left := childLeft
	if idx > 0 {
		left = concat(newInternal(append([]*node(nil), n.children[:idx]...)), childLeft)
	}
	right := childRight
	if idx < len(n.children)-1 {
		right = concat(childRight, newInternal(append([]*node(nil), n.children[idx+1:]...)))
	}
	return trim(left), trim(right)
}

// trim removes single-child internal nodes from the top of the tree.
func trim(n *node) *node {
	for !n.isLeaf() && len(n.children) == 1 {
		n = n.children[0]
	}
	return n
}

// childByLine returns the child holding line and the line number within it.
func (n *node) childByLine(line uint32) (int, uint32) {
	for i, s := range n.childSummaries {
		if line < s.Lines {
			return i, line
		}
		line -= s.Lines
	}
	last := len(n.children) - 1
	return last, line + n.childSummaries[last].Lines
}

// walk calls fn for each record in order, stopping when fn returns false.
func (n *node) walk(line uint32, start ByteOffset, fn func(uint32, ByteOffset, Record) bool) (uint32, ByteOffset, bool) {
	if n.isLeaf() {
		for _, r := range n.records {
			if !fn(line, start, r) {
				return line, start, false
			}
			line++
			start += r.TotalLength()
		}
		return line, start, true
	}
	for _, child := range n.children {
		var ok bool
		line, start, ok = child.walk(line, start, fn)
		if !ok {
			return line, start, false
		}
	}
	return line, start, true
}
