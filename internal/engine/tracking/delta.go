package tracking

import (
	"errors"
	"fmt"

	"github.com/dshills/textstore/internal/engine/lineindex"
)

// ByteOffset is a byte position in the text.
type ByteOffset = lineindex.ByteOffset

// Position is a zero-based line and byte column.
type Position = lineindex.Position

// Errors returned by the translator.
var (
	// ErrDeltaCompleted indicates Complete was called twice on one pending
	// delta.
	ErrDeltaCompleted = errors.New("parser delta already completed")

	// ErrIndexNotUpdated indicates the index handed to Complete does not
	// reflect the edit.
	ErrIndexNotUpdated = errors.New("line index does not reflect edit")
)

// PointSource converts offsets to positions. *lineindex.Index satisfies it.
type PointSource interface {
	Len() ByteOffset
	PositionForOffset(offset ByteOffset) (Position, error)
}

// ParserDelta describes one edit the way an incremental parser expects it.
// Start and old end refer to the pre-edit text, new end to the post-edit
// text.
type ParserDelta struct {
	StartByte  ByteOffset
	OldEndByte ByteOffset
	NewEndByte ByteOffset

	StartPoint  Position
	OldEndPoint Position
	NewEndPoint Position
}

// Delta returns the change in text length.
func (d ParserDelta) Delta() int64 {
	return d.NewEndByte - d.OldEndByte
}

// OldRange returns the replaced range in the pre-edit text.
func (d ParserDelta) OldRange() Range {
	return Range{Start: d.StartByte, End: d.OldEndByte}
}

// NewRange returns the replacement range in the post-edit text.
func (d ParserDelta) NewRange() Range {
	return Range{Start: d.StartByte, End: d.NewEndByte}
}

// String returns a human-readable representation of the delta.
func (d ParserDelta) String() string {
	return fmt.Sprintf("[%d,%d)->[%d,%d) %v..%v->%v",
		d.StartByte, d.OldEndByte, d.StartByte, d.NewEndByte,
		d.StartPoint, d.OldEndPoint, d.NewEndPoint)
}

// ShiftOffset maps a pre-edit offset to the post-edit text. Offsets before
// the edit are unchanged and offsets at or after the old end move by the
// delta. Offsets strictly inside the replaced range report false.
func (d ParserDelta) ShiftOffset(off ByteOffset) (ByteOffset, bool) {
	switch {
	case off <= d.StartByte:
		return off, true
	case off >= d.OldEndByte:
		return off + d.Delta(), true
	default:
		return 0, false
	}
}

// ShiftRange maps a pre-edit range to the post-edit text. Ranges that end at
// or before the edit start are unchanged; ranges that start at or after the
// old end move by the delta. Anything else intersects the edit and reports
// false.
func (d ParserDelta) ShiftRange(r Range) (Range, bool) {
	switch {
	case r.End <= d.StartByte:
		return r, true
	case r.Start >= d.OldEndByte:
		return r.Shift(d.Delta()), true
	default:
		return Range{}, false
	}
}

// MapRange maps a pre-edit range to the smallest post-edit range covering
// what is left of it. Ends inside the replaced range snap to the replacement.
func (d ParserDelta) MapRange(r Range) Range {
	mapEnd := func(off ByteOffset, inside ByteOffset) ByteOffset {
		if shifted, ok := d.ShiftOffset(off); ok {
			return shifted
		}
		return inside
	}
	return Range{
		Start: mapEnd(r.Start, d.StartByte),
		End:   mapEnd(r.End, d.NewEndByte),
	}
}

// PendingDelta is a delta whose start and old end points have been read from
// the pre-edit index. It is completed once the index has been updated.
type PendingDelta struct {
	edit      lineindex.Edit
	beforeLen ByteOffset
	delta     ParserDelta
	done      bool
}

// Prepare reads the start and old end points of edit from the pre-edit
// index.
func Prepare(edit lineindex.Edit, before PointSource) (*PendingDelta, error) {
	if err := edit.Check(before.Len()); err != nil {
		return nil, err
	}

	startPoint, err := before.PositionForOffset(edit.Start)
	if err != nil {
		return nil, fmt.Errorf("start point: %w", err)
	}
	oldEndPoint, err := before.PositionForOffset(edit.OldEnd)
	if err != nil {
		return nil, fmt.Errorf("old end point: %w", err)
	}

	return &PendingDelta{
		edit:      edit,
		beforeLen: before.Len(),
		delta: ParserDelta{
			StartByte:   edit.Start,
			OldEndByte:  edit.OldEnd,
			NewEndByte:  edit.NewEnd(),
			StartPoint:  startPoint,
			OldEndPoint: oldEndPoint,
		},
	}, nil
}

// Edit returns the edit being translated.
func (p *PendingDelta) Edit() lineindex.Edit {
	return p.edit
}

// Complete reads the new end point from the post-edit index and returns the
// finished delta. It can be called once.
func (p *PendingDelta) Complete(after PointSource) (ParserDelta, error) {
	if p.done {
		return ParserDelta{}, ErrDeltaCompleted
	}
	if got, want := after.Len(), p.beforeLen+p.edit.NewLengthDelta; got != want {
		return ParserDelta{}, fmt.Errorf("%w: length %d, expected %d", ErrIndexNotUpdated, got, want)
	}

	newEndPoint, err := after.PositionForOffset(p.delta.NewEndByte)
	if err != nil {
		return ParserDelta{}, fmt.Errorf("new end point: %w", err)
	}
	p.delta.NewEndPoint = newEndPoint
	p.done = true
	return p.delta, nil
}

// Translate computes the delta of edit from the index before and after it
// was applied. It only reads the two indexes.
func Translate(edit lineindex.Edit, before, after PointSource) (ParserDelta, error) {
	pending, err := Prepare(edit, before)
	if err != nil {
		return ParserDelta{}, err
	}
	return pending.Complete(after)
}

// Result is the outcome of applying an edit to a line index.
type Result struct {
	Delta ParserDelta
	Lines lineindex.LineChangeSet
}

// Apply updates idx for an edit already applied to text and returns the
// parser delta along with the affected lines. On error idx is unchanged.
func Apply(idx *lineindex.Index, edit lineindex.Edit, text lineindex.TextSource) (Result, error) {
	pending, err := Prepare(edit, idx)
	if err != nil {
		return Result{}, err
	}

	before := idx.Snapshot()
	lines, err := idx.ApplyEdit(edit, text)
	if err != nil {
		return Result{}, err
	}

	delta, err := pending.Complete(idx)
	if err != nil {
		// Roll back so the index still matches the edit's pre-state.
		*idx = *before
		return Result{}, err
	}
	return Result{Delta: delta, Lines: lines}, nil
}
