package lineindex

import (
	"fmt"
	"math/bits"
)

// Index is an ordered sequence of line records supporting offset/position
// conversion in O(log n) and incremental updates.
//
// The zero value is not usable; create an Index with New or Build.
type Index struct {
	root *node
}

// New returns the index of an empty document: one empty line.
func New() *Index {
	return &Index{root: newLeaf([]Record{{}})}
}

// Build scans text and returns its index. This is the full rescan used on
// first load; edits go through ApplyEdit.
func Build(text string) *Index {
	records, _ := scanRecords(text, true)
	return &Index{root: buildFromRecords(records)}
}

// Snapshot returns an immutable view of the current index. It shares all
// nodes with idx and is unaffected by later edits.
func (idx *Index) Snapshot() *Index {
	return &Index{root: idx.root}
}

// LineCount returns the number of lines. It is always at least 1.
func (idx *Index) LineCount() uint32 {
	return idx.root.summary.Lines
}

// Len returns the total length of the text in bytes.
func (idx *Index) Len() ByteOffset {
	return idx.root.summary.Length
}

// Line returns the record of the given line.
func (idx *Index) Line(line uint32) (Record, error) {
	r, _, err := idx.lineAt(line)
	return r, err
}

// OffsetOfLine returns the offset of the first byte of line.
func (idx *Index) OffsetOfLine(line uint32) (ByteOffset, error) {
	_, start, err := idx.lineAt(line)
	return start, err
}

// LineEndOffset returns the offset just past the content of line, before its
// terminator.
func (idx *Index) LineEndOffset(line uint32) (ByteOffset, error) {
	r, start, err := idx.lineAt(line)
	if err != nil {
		return 0, err
	}
	return start + r.ByteLength, nil
}

func (idx *Index) lineAt(line uint32) (Record, ByteOffset, error) {
	if line >= idx.LineCount() {
		return Record{}, 0, fmt.Errorf("%w: line %d of %d", ErrOutOfRange, line, idx.LineCount())
	}

	n := idx.root
	var start ByteOffset
	for !n.isLeaf() {
		i, local := n.childByLine(line)
		for j := 0; j < i; j++ {
			start += n.childSummaries[j].Length
		}
		n = n.children[i]
		line = local
	}
	for j := uint32(0); j < line; j++ {
		start += n.records[j].TotalLength()
	}
	return n.records[line], start, nil
}

// PositionForOffset converts an offset to a line and column. An offset at the
// start of a line belongs to that line; Len() belongs to the last line.
func (idx *Index) PositionForOffset(offset ByteOffset) (Position, error) {
	line, start, _, err := idx.lineContaining(offset)
	if err != nil {
		return Position{}, err
	}
	return Position{Line: line, Column: uint32(offset - start)}, nil
}

// lineContaining finds the line holding offset with a single descent over
// cumulative lengths.
func (idx *Index) lineContaining(offset ByteOffset) (uint32, ByteOffset, Record, error) {
	if offset < 0 || offset > idx.Len() {
		return 0, 0, Record{}, fmt.Errorf("%w: offset %d of %d", ErrOutOfRange, offset, idx.Len())
	}

	n := idx.root
	var line uint32
	var start ByteOffset
	for !n.isLeaf() {
		last := len(n.children) - 1
		for i, s := range n.childSummaries {
			if offset < start+s.Length || i == last {
				n = n.children[i]
				break
			}
			start += s.Length
			line += s.Lines
		}
	}

	last := len(n.records) - 1
	for i, r := range n.records {
		if offset < start+r.TotalLength() || i == last {
			return line, start, r, nil
		}
		start += r.TotalLength()
		line++
	}
	// Unreachable: every leaf reached by the descent holds at least one record.
	return 0, 0, Record{}, fmt.Errorf("%w: empty leaf", ErrIndexDesync)
}

// OffsetForPosition converts a line and column back to an offset. The column
// may address the content or the terminator of the line, but not the start
// of the next line.
func (idx *Index) OffsetForPosition(pos Position) (ByteOffset, error) {
	r, start, err := idx.lineAt(pos.Line)
	if err != nil {
		return 0, err
	}
	if ByteOffset(pos.Column) > r.maxColumn() {
		return 0, fmt.Errorf("%w: column %d on line %d of length %s", ErrOutOfRange, pos.Column, pos.Line, r)
	}
	return start + ByteOffset(pos.Column), nil
}

// LinesInRange returns the first and last line intersecting [start, end).
// An empty range reports the line containing start twice.
func (idx *Index) LinesInRange(start, end ByteOffset) (uint32, uint32, error) {
	if end < start {
		return 0, 0, fmt.Errorf("%w: range [%d, %d)", ErrOutOfRange, start, end)
	}
	first, _, _, err := idx.lineContaining(start)
	if err != nil {
		return 0, 0, err
	}
	if end == start {
		return first, first, nil
	}
	last, _, _, err := idx.lineContaining(end - 1)
	if err != nil {
		return 0, 0, err
	}
	return first, last, nil
}

// Records returns a copy of all line records in order.
func (idx *Index) Records() []Record {
	records := make([]Record, 0, idx.LineCount())
	idx.Walk(func(_ uint32, _ ByteOffset, r Record) bool {
		records = append(records, r)
		return true
	})
	return records
}

// Walk calls fn for every line in order with its number, start offset and
// record. Iteration stops when fn returns false.
func (idx *Index) Walk(fn func(line uint32, start ByteOffset, r Record) bool) {
	idx.root.walk(0, 0, fn)
}

// Validate checks the structural invariants: lengths add up, every line but
// the last carries a terminator and the last one does not.
func (idx *Index) Validate() error {
	var total ByteOffset
	count := idx.LineCount()
	var bad error
	idx.Walk(func(line uint32, start ByteOffset, r Record) bool {
		if start != total {
			bad = fmt.Errorf("%w: line %d starts at %d, expected %d", ErrIndexDesync, line, start, total)
			return false
		}
		if r.TerminatorLength > 2 || (line+1 < count) != (r.TerminatorLength > 0) {
			bad = fmt.Errorf("%w: line %d has terminator length %d", ErrIndexDesync, line, r.TerminatorLength)
			return false
		}
		total += r.TotalLength()
		return true
	})
	if bad != nil {
		return bad
	}
	if total != idx.Len() {
		return fmt.Errorf("%w: records sum to %d, index length %d", ErrIndexDesync, total, idx.Len())
	}
	return nil
}

// replaceLines swaps lines [from, to) for records and returns the new root.
func (idx *Index) replaceLines(from, to uint32, records []Record) *node {
	left, rest := split(idx.root, from)
	_, right := split(rest, to-from)
	root := trim(concat(concat(left, buildFromRecords(records)), right))
	if int(root.height) > maxHeight(root.summary.Lines) {
		root = buildFromRecords(collect(root))
	}
	return root
}

// maxHeight bounds the tree height before a rebuild is forced. Concatenation
// keeps leaves level but can leave sparse nodes behind after many splits.
func maxHeight(lines uint32) int {
	leaves := lines/maxRecordsPerLeaf + 1
	return 2*bits.Len32(leaves) + 2
}

func collect(n *node) []Record {
	records := make([]Record, 0, n.summary.Lines)
	n.walk(0, 0, func(_ uint32, _ ByteOffset, r Record) bool {
		records = append(records, r)
		return true
	})
	return records
}
