package tracking

import (
	"errors"
	"testing"

	"github.com/dshills/textstore/internal/engine/lineindex"
)

func TestTranslateInsertNewline(t *testing.T) {
	idx := lineindex.Build("a\nbb\nccc")
	edit := lineindex.InsertEdit(4, "\n")

	res, err := Apply(idx, edit, lineindex.StringSource("a\nbb\n\nccc"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := ParserDelta{
		StartByte:   4,
		OldEndByte:  4,
		NewEndByte:  5,
		StartPoint:  Position{Line: 1, Column: 2},
		OldEndPoint: Position{Line: 1, Column: 2},
		NewEndPoint: Position{Line: 2, Column: 0},
	}
	if res.Delta != want {
		t.Errorf("delta = %v, want %v", res.Delta, want)
	}
	if len(res.Lines.Inserted) != 1 || res.Lines.Inserted[0] != 2 {
		t.Errorf("inserted = %v, want [2]", res.Lines.Inserted)
	}
}

// Deleting a terminator is where reading every point from one index state
// goes wrong: the old end lies on the next line before the edit.
func TestTranslateDeleteTerminator(t *testing.T) {
	idx := lineindex.Build("ab\ncd")
	before := idx.Snapshot()
	edit := lineindex.DeleteEdit(2, 3)

	pending, err := Prepare(edit, idx)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := idx.ApplyEdit(edit, lineindex.StringSource("abcd")); err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	delta, err := pending.Complete(idx)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if delta.OldEndPoint != (Position{Line: 1, Column: 0}) {
		t.Errorf("old end point = %v, want (1:0)", delta.OldEndPoint)
	}
	if delta.NewEndPoint != (Position{Line: 0, Column: 2}) {
		t.Errorf("new end point = %v, want (0:2)", delta.NewEndPoint)
	}

	same, err := Translate(edit, before, idx)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if same != delta {
		t.Errorf("Translate = %v, want %v", same, delta)
	}
}

func TestCompleteTwice(t *testing.T) {
	idx := lineindex.Build("abc")
	pending, err := Prepare(lineindex.InsertEdit(1, "x"), idx)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := idx.ApplyEdit(pending.Edit(), lineindex.StringSource("axbc")); err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if _, err := pending.Complete(idx); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := pending.Complete(idx); !errors.Is(err, ErrDeltaCompleted) {
		t.Errorf("second Complete error = %v, want ErrDeltaCompleted", err)
	}
}

func TestCompleteWithStaleIndex(t *testing.T) {
	idx := lineindex.Build("abc")
	pending, err := Prepare(lineindex.InsertEdit(1, "x"), idx)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := pending.Complete(idx); !errors.Is(err, ErrIndexNotUpdated) {
		t.Errorf("Complete error = %v, want ErrIndexNotUpdated", err)
	}
}

func TestPrepareRejectsInvalidEdit(t *testing.T) {
	idx := lineindex.Build("abc")
	_, err := Prepare(lineindex.DeleteEdit(2, 10), idx)
	if !errors.Is(err, lineindex.ErrInvalidEdit) {
		t.Errorf("Prepare error = %v, want ErrInvalidEdit", err)
	}
}

func TestApplyLeavesIndexOnDesync(t *testing.T) {
	idx := lineindex.Build("a\nb")
	_, err := Apply(idx, lineindex.InsertEdit(0, "x"), lineindex.StringSource("a\nb"))
	if !errors.Is(err, lineindex.ErrIndexDesync) {
		t.Fatalf("Apply error = %v, want ErrIndexDesync", err)
	}
	if idx.Len() != 3 || idx.LineCount() != 2 {
		t.Errorf("index changed: len %d, lines %d", idx.Len(), idx.LineCount())
	}
}

func TestShiftRange(t *testing.T) {
	// Replace [10,14) with 6 bytes.
	d := ParserDelta{StartByte: 10, OldEndByte: 14, NewEndByte: 16}

	tests := []struct {
		name string
		in   Range
		want Range
		ok   bool
	}{
		{"before", Range{0, 5}, Range{0, 5}, true},
		{"ends at start", Range{5, 10}, Range{5, 10}, true},
		{"after", Range{20, 25}, Range{22, 27}, true},
		{"starts at old end", Range{14, 15}, Range{16, 17}, true},
		{"overlaps start", Range{8, 11}, Range{}, false},
		{"inside", Range{11, 12}, Range{}, false},
		{"covers", Range{0, 30}, Range{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.ShiftRange(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ShiftRange(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestShiftOffset(t *testing.T) {
	d := ParserDelta{StartByte: 4, OldEndByte: 4, NewEndByte: 7}

	if off, ok := d.ShiftOffset(4); !ok || off != 4 {
		t.Errorf("ShiftOffset(4) = %d, %v", off, ok)
	}
	if off, ok := d.ShiftOffset(5); !ok || off != 8 {
		t.Errorf("ShiftOffset(5) = %d, %v", off, ok)
	}

	d = ParserDelta{StartByte: 4, OldEndByte: 8, NewEndByte: 4}
	if _, ok := d.ShiftOffset(6); ok {
		t.Error("ShiftOffset inside deleted range should fail")
	}
}

func TestMapRange(t *testing.T) {
	// [4,8) replaced by two bytes.
	d := ParserDelta{StartByte: 4, OldEndByte: 8, NewEndByte: 6}
	tests := []struct {
		in, want Range
	}{
		{Range{0, 3}, Range{0, 3}},
		{Range{0, 10}, Range{0, 8}},
		{Range{2, 6}, Range{2, 6}},
		{Range{5, 7}, Range{4, 6}},
		{Range{6, 12}, Range{4, 10}},
		{Range{9, 12}, Range{7, 10}},
	}
	for _, tt := range tests {
		if got := d.MapRange(tt.in); got != tt.want {
			t.Errorf("MapRange(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRange(t *testing.T) {
	r := Range{Start: 2, End: 6}
	if r.Len() != 4 {
		t.Errorf("Len = %d, want 4", r.Len())
	}
	if !r.Contains(2) || r.Contains(6) {
		t.Error("Contains should include start and exclude end")
	}
	if !r.Overlaps(Range{5, 9}) || r.Overlaps(Range{6, 9}) {
		t.Error("Overlaps mismatch")
	}
	if !r.Overlaps(Range{4, 4}) || r.Overlaps(Range{2, 2}) {
		t.Error("empty range overlap mismatch")
	}
	if !r.Touches(Range{6, 9}) {
		t.Error("adjacent ranges should touch")
	}

	merged := MergeRanges([]Range{{0, 2}, {2, 4}, {6, 8}, {7, 10}})
	want := []Range{{0, 4}, {6, 10}}
	if len(merged) != len(want) {
		t.Fatalf("MergeRanges = %v, want %v", merged, want)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Errorf("MergeRanges[%d] = %v, want %v", i, merged[i], want[i])
		}
	}
}

func TestChange(t *testing.T) {
	c := NewChange(lineindex.NewEdit(3, 5, "xyz"), "ab", 7)
	if c.Type != ChangeReplace {
		t.Errorf("Type = %v, want replace", c.Type)
	}
	if c.Delta() != 1 {
		t.Errorf("Delta = %d, want 1", c.Delta())
	}
	if c.NewRange != (Range{3, 6}) {
		t.Errorf("NewRange = %v, want [3,6)", c.NewRange)
	}

	inv := c.Invert()
	if inv.Range != c.NewRange || inv.NewText != "ab" {
		t.Errorf("Invert = %+v", inv)
	}
	if e := inv.Edit(); e.Start != 3 || e.OldEnd != 6 || e.Text != "ab" {
		t.Errorf("inverse edit = %v", e)
	}

	ins := NewChange(lineindex.InsertEdit(0, "hi"), "", 1)
	del := NewChange(lineindex.DeleteEdit(0, 2), "hi", 2)
	if ins.Type != ChangeInsert || del.Type != ChangeDelete {
		t.Errorf("types = %v, %v", ins.Type, del.Type)
	}

	var cs ChangeSet
	cs.Add(ins)
	cs.Add(del)
	cs.Add(c)
	if cs.TotalDelta() != 1 {
		t.Errorf("TotalDelta = %d, want 1", cs.TotalDelta())
	}
	if got, want := cs.Summary(), "1 inserts, 1 deletes, 1 replaces (+5/-4 bytes)"; got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}
