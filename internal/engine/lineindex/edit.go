package lineindex

import "fmt"

// Edit describes a single replacement of [Start, OldEnd) by Text.
type Edit struct {
	Start          ByteOffset
	OldEnd         ByteOffset
	NewLengthDelta int64
	Text           string
}

// NewEdit creates an edit replacing [start, oldEnd) with text.
func NewEdit(start, oldEnd ByteOffset, text string) Edit {
	return Edit{
		Start:          start,
		OldEnd:         oldEnd,
		NewLengthDelta: int64(len(text)) - (oldEnd - start),
		Text:           text,
	}
}

// InsertEdit creates an edit inserting text at offset.
func InsertEdit(offset ByteOffset, text string) Edit {
	return NewEdit(offset, offset, text)
}

// DeleteEdit creates an edit removing [start, end).
func DeleteEdit(start, end ByteOffset) Edit {
	return NewEdit(start, end, "")
}

// NewEnd returns the end of the replacement in the post-edit text.
func (e Edit) NewEnd() ByteOffset {
	return e.Start + ByteOffset(len(e.Text))
}

// IsNoOp returns true if the edit neither removes nor inserts anything.
func (e Edit) IsNoOp() bool {
	return e.Start == e.OldEnd && e.Text == ""
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	return fmt.Sprintf("Edit{[%d,%d) -> %q}", e.Start, e.OldEnd, e.Text)
}

// Check reports whether e is well formed against a text of length total.
func (e Edit) Check(total ByteOffset) error {
	if e.Start < 0 || e.Start > e.OldEnd || e.OldEnd > total {
		return fmt.Errorf("%w: range [%d, %d) in text of length %d", ErrInvalidEdit, e.Start, e.OldEnd, total)
	}
	if want := int64(len(e.Text)) - (e.OldEnd - e.Start); e.NewLengthDelta != want {
		return fmt.Errorf("%w: length delta %d, expected %d", ErrInvalidEdit, e.NewLengthDelta, want)
	}
	return nil
}

// LineChangeSet lists the line numbers affected by an edit.
//
// Inserted is ascending; each number is valid once the preceding insertions
// are applied. Removed is descending; each number is valid in the numbering
// before it is removed. Edited holds surviving lines whose content changed,
// numbered after the edit.
type LineChangeSet struct {
	Inserted []uint32
	Removed  []uint32
	Edited   []uint32
}

// IsEmpty returns true if no line was touched.
func (cs LineChangeSet) IsEmpty() bool {
	return len(cs.Inserted) == 0 && len(cs.Removed) == 0 && len(cs.Edited) == 0
}

// LineDelta returns the net change in line count.
func (cs LineChangeSet) LineDelta() int {
	return len(cs.Inserted) - len(cs.Removed)
}

// ApplyEdit updates the index for an edit already applied to src, the
// post-edit text. Only the lines touched by the edit are rescanned.
//
// The edit and the rescan are validated before the tree is modified; on error
// the index is unchanged.
func (idx *Index) ApplyEdit(edit Edit, src TextSource) (LineChangeSet, error) {
	if err := edit.Check(idx.Len()); err != nil {
		return LineChangeSet{}, err
	}
	if got, want := src.Len(), idx.Len()+edit.NewLengthDelta; got != want {
		return LineChangeSet{}, fmt.Errorf("%w: text length %d, expected %d", ErrIndexDesync, got, want)
	}
	if edit.IsNoOp() {
		return LineChangeSet{}, nil
	}
	if got := src.Slice(edit.Start, edit.NewEnd()); got != edit.Text {
		return LineChangeSet{}, fmt.Errorf("%w: replacement text not found at %d", ErrIndexDesync, edit.Start)
	}

	first, firstStart, _, err := idx.lineContaining(edit.Start)
	if err != nil {
		return LineChangeSet{}, err
	}
	last, lastStart, lastRecord, err := idx.lineContaining(edit.OldEnd)
	if err != nil {
		return LineChangeSet{}, err
	}

	// A lone "\r" ending the previous line may pair with a leading "\n" of the
	// edited line.
	if first > 0 && src.Slice(firstStart-1, firstStart+1) == "\r\n" {
		prev, err := idx.Line(first - 1)
		if err != nil {
			return LineChangeSet{}, err
		}
		first--
		firstStart -= prev.TotalLength()
	}

	// Only a rescan reaching the old last line may end without a terminator.
	// A document ending in a terminator keeps its empty last line when the
	// edit stops before it.
	regionEnd := lastStart + lastRecord.TotalLength() + edit.NewLengthDelta
	final := last == idx.LineCount()-1
	if !final && regionEnd > 0 && regionEnd < src.Len() && src.Slice(regionEnd-1, regionEnd+1) == "\r\n" {
		return LineChangeSet{}, fmt.Errorf("%w: terminator split at %d", ErrIndexDesync, regionEnd)
	}

	records, err := scanRecords(src.Slice(firstStart, regionEnd), final)
	if err != nil {
		return LineChangeSet{}, err
	}

	root := idx.replaceLines(first, last+1, records)
	if root.summary.Length != src.Len() {
		return LineChangeSet{}, fmt.Errorf("%w: index length %d, text length %d", ErrIndexDesync, root.summary.Length, src.Len())
	}
	idx.root = root

	return lineChanges(first, last-first+1, uint32(len(records))), nil
}

// lineChanges describes replacing m lines starting at first with k lines.
// The first min(m, k) lines survive as edited; the rest are inserted after
// them or removed from the end.
func lineChanges(first, m, k uint32) LineChangeSet {
	var cs LineChangeSet
	for i := uint32(0); i < min(m, k); i++ {
		cs.Edited = append(cs.Edited, first+i)
	}
	for l := first + m; l < first+k; l++ {
		cs.Inserted = append(cs.Inserted, l)
	}
	for l := first + m; l > first+k; l-- {
		cs.Removed = append(cs.Removed, l-1)
	}
	return cs
}
