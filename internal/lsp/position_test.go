package lsp

import (
	"context"
	"errors"
	"testing"

	golsp "github.com/sourcegraph/go-lsp"

	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/engine/textstore"
	"github.com/dshills/textstore/internal/renderer/highlight"
	"github.com/dshills/textstore/internal/syntax"
)

const sample = "héllo 😀 x\r\nline2\n"

func newConverter(t *testing.T, text string) (Converter, *textstore.Store) {
	t.Helper()
	s, err := textstore.New(text)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return Converter{Store: s}, s
}

func TestPosition(t *testing.T) {
	c, _ := newConverter(t, sample)

	tests := []struct {
		off  lineindex.ByteOffset
		want golsp.Position
	}{
		{0, golsp.Position{Line: 0, Character: 0}},
		{3, golsp.Position{Line: 0, Character: 2}},  // after é
		{11, golsp.Position{Line: 0, Character: 8}}, // after the emoji
		{12, golsp.Position{Line: 0, Character: 9}},
		{15, golsp.Position{Line: 1, Character: 0}},
		{20, golsp.Position{Line: 1, Character: 5}},
		{21, golsp.Position{Line: 2, Character: 0}},
	}

	for _, tt := range tests {
		got, err := c.Position(tt.off)
		if err != nil {
			t.Fatalf("Position(%d): %v", tt.off, err)
		}
		if got != tt.want {
			t.Errorf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}

	if _, err := c.Position(99); !errors.Is(err, lineindex.ErrOutOfRange) {
		t.Errorf("Position(99) error = %v, want ErrOutOfRange", err)
	}
}

func TestOffset(t *testing.T) {
	c, _ := newConverter(t, sample)

	tests := []struct {
		name string
		pos  golsp.Position
		want lineindex.ByteOffset
	}{
		{"start", golsp.Position{Line: 0, Character: 0}, 0},
		{"after emoji", golsp.Position{Line: 0, Character: 8}, 11},
		{"inside surrogate pair", golsp.Position{Line: 0, Character: 7}, 11},
		{"past line end", golsp.Position{Line: 0, Character: 100}, 13},
		{"second line", golsp.Position{Line: 1, Character: 2}, 17},
		{"past last line", golsp.Position{Line: 5, Character: 0}, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Offset(tt.pos)
			if err != nil {
				t.Fatalf("Offset: %v", err)
			}
			if got != tt.want {
				t.Errorf("Offset(%+v) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}

	if _, err := c.Offset(golsp.Position{Line: -1}); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("negative line error = %v, want ErrInvalidPosition", err)
	}
}

func TestRange(t *testing.T) {
	c, _ := newConverter(t, sample)

	got, err := c.Range(syntax.ByteRange{Start: 7, End: 17})
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	want := golsp.Range{
		Start: golsp.Position{Line: 0, Character: 6},
		End:   golsp.Position{Line: 1, Character: 2},
	}
	if got != want {
		t.Errorf("Range = %+v, want %+v", got, want)
	}

	if _, err := c.Range(syntax.ByteRange{Start: 0, End: 50}); err == nil {
		t.Error("expected error for range past the end")
	}
}

func TestHighlightRange(t *testing.T) {
	c, _ := newConverter(t, sample)

	h := highlight.HighlightRange{
		Position: lineindex.Position{Line: 0, Column: 7},
		End:      lineindex.Position{Line: 0, Column: 11},
	}
	got := c.HighlightRange(h)
	if got.Start.Character != 6 || got.End.Character != 8 {
		t.Errorf("HighlightRange = %+v, want characters 6-8", got)
	}

	gone := highlight.HighlightRange{
		Position: lineindex.Position{Line: 9, Column: 3},
		End:      lineindex.Position{Line: 9, Column: 4},
	}
	got = c.HighlightRange(gone)
	if got.Start.Line != 9 || got.Start.Character != 0 {
		t.Errorf("HighlightRange past the end = %+v", got)
	}
}

func TestChangeEvent(t *testing.T) {
	c, s := newConverter(t, "ab\ncd\n")
	ctx := context.Background()

	res, err := s.Replace(ctx, 1, 4, "X😀")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	ev, err := c.ChangeEvent(res)
	if err != nil {
		t.Fatalf("ChangeEvent: %v", err)
	}
	wantRange := golsp.Range{
		Start: golsp.Position{Line: 0, Character: 1},
		End:   golsp.Position{Line: 1, Character: 1},
	}
	if ev.Range == nil || *ev.Range != wantRange {
		t.Errorf("Range = %+v, want %+v", ev.Range, wantRange)
	}
	if ev.RangeLength != 3 {
		t.Errorf("RangeLength = %d, want 3", ev.RangeLength)
	}
	if ev.Text != "X😀" {
		t.Errorf("Text = %q", ev.Text)
	}

	res, err = s.Insert(ctx, 0, "z")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	ev, err = c.ChangeEvent(res)
	if err != nil {
		t.Fatalf("ChangeEvent: %v", err)
	}
	if ev.Range.Start != ev.Range.End || ev.RangeLength != 0 {
		t.Errorf("insert event = %+v, want empty range", ev)
	}
}

func TestUTF16Helpers(t *testing.T) {
	if n := utf16LenForString("a😀é"); n != 4 {
		t.Errorf("utf16LenForString = %d, want 4", n)
	}
	if off := utf16ToByteOffset("a😀é", 3); off != 5 {
		t.Errorf("utf16ToByteOffset = %d, want 5", off)
	}
	if off := utf16ToByteOffset("abc", 10); off != 3 {
		t.Errorf("utf16ToByteOffset past end = %d, want 3", off)
	}
}
