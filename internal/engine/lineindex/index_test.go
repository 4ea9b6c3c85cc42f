package lineindex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScenario(t *testing.T) {
	idx := Build("a\nbb\nccc")

	assert.Equal(t, uint32(3), idx.LineCount())
	assert.Equal(t, ByteOffset(8), idx.Len())

	off, err := idx.OffsetOfLine(1)
	require.NoError(t, err)
	assert.Equal(t, ByteOffset(2), off)

	pos, err := idx.PositionForOffset(7)
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 2, Column: 2}, pos)
}

func TestApplyEditScenario(t *testing.T) {
	idx := Build("a\nbb\nccc")
	text := "a\nbb\n\nccc"

	cs, err := idx.ApplyEdit(InsertEdit(4, "\n"), StringSource(text))
	require.NoError(t, err)

	assert.Equal(t, uint32(4), idx.LineCount())
	assert.Equal(t, []uint32{2}, cs.Inserted)
	assert.Empty(t, cs.Removed)
	assert.Equal(t, []uint32{1}, cs.Edited)

	pos, err := idx.PositionForOffset(8)
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 3, Column: 2}, pos)
	require.NoError(t, idx.Validate())
}

func TestNewIsSingleEmptyLine(t *testing.T) {
	idx := New()
	assert.Equal(t, uint32(1), idx.LineCount())
	assert.Equal(t, ByteOffset(0), idx.Len())
	assert.Equal(t, []Record{{}}, idx.Records())
	assert.Equal(t, Build("").Records(), idx.Records())
}

func TestBuildTerminators(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Record
	}{
		{"empty", "", []Record{{}}},
		{"no terminator", "abc", []Record{{ByteLength: 3}}},
		{"lf", "a\nb", []Record{{1, 1}, {1, 0}}},
		{"crlf", "a\r\nb", []Record{{1, 2}, {1, 0}}},
		{"lone cr", "a\rb", []Record{{1, 1}, {1, 0}}},
		{"trailing lf", "a\n", []Record{{1, 1}, {0, 0}}},
		{"lf cr", "\n\r", []Record{{0, 1}, {0, 1}, {0, 0}}},
		{"cr cr lf", "\r\r\n", []Record{{0, 1}, {0, 2}, {0, 0}}},
		{"multibyte", "日本\n語", []Record{{6, 1}, {3, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Build(tt.text)
			assert.Equal(t, tt.want, idx.Records())
			require.NoError(t, idx.Validate())
		})
	}
}

func TestOutOfRange(t *testing.T) {
	idx := Build("ab\ncd")

	_, err := idx.OffsetOfLine(2)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = idx.PositionForOffset(6)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = idx.PositionForOffset(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = idx.OffsetForPosition(Position{Line: 0, Column: 2})
	require.NoError(t, err)
	_, err = idx.OffsetForPosition(Position{Line: 0, Column: 3})
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = idx.OffsetForPosition(Position{Line: 1, Column: 3})
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = idx.OffsetForPosition(Position{Line: 5})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestPositionEndOfText(t *testing.T) {
	idx := Build("ab\n")
	pos, err := idx.PositionForOffset(3)
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 1, Column: 0}, pos)
}

func TestPositionInsideCRLF(t *testing.T) {
	idx := Build("ab\r\ncd")

	pos, err := idx.PositionForOffset(3)
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 0, Column: 3}, pos)

	off, err := idx.OffsetForPosition(pos)
	require.NoError(t, err)
	assert.Equal(t, ByteOffset(3), off)

	pos, err = idx.PositionForOffset(4)
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 1, Column: 0}, pos)
}

func TestLinesInRange(t *testing.T) {
	idx := Build("a\nbb\nccc")

	tests := []struct {
		start, end  ByteOffset
		first, last uint32
	}{
		{0, 1, 0, 0},
		{0, 2, 0, 0},
		{0, 3, 0, 1},
		{1, 6, 0, 2},
		{5, 5, 2, 2},
		{8, 8, 2, 2},
	}
	for _, tt := range tests {
		first, last, err := idx.LinesInRange(tt.start, tt.end)
		require.NoError(t, err)
		assert.Equal(t, tt.first, first, "first line of [%d,%d)", tt.start, tt.end)
		assert.Equal(t, tt.last, last, "last line of [%d,%d)", tt.start, tt.end)
	}

	_, _, err := idx.LinesInRange(3, 2)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestApplyEditBoundary(t *testing.T) {
	t.Run("terminator at end of last line", func(t *testing.T) {
		idx := Build("abc")
		cs, err := idx.ApplyEdit(InsertEdit(3, "\n"), StringSource("abc\n"))
		require.NoError(t, err)
		assert.Equal(t, uint32(2), idx.LineCount())
		assert.Equal(t, []uint32{1}, cs.Inserted)
		assert.Equal(t, []Record{{3, 1}, {0, 0}}, idx.Records())
	})

	t.Run("delete only terminator", func(t *testing.T) {
		idx := Build("ab\ncde")
		cs, err := idx.ApplyEdit(DeleteEdit(2, 3), StringSource("abcde"))
		require.NoError(t, err)
		assert.Equal(t, uint32(1), idx.LineCount())
		assert.Equal(t, []uint32{1}, cs.Removed)
		assert.Equal(t, []Record{{5, 0}}, idx.Records())
	})

	t.Run("cr joins following lf", func(t *testing.T) {
		idx := Build("a\rb\nc")
		// Deleting "b" leaves "\r\n" which becomes one terminator.
		cs, err := idx.ApplyEdit(DeleteEdit(2, 3), StringSource("a\r\nc"))
		require.NoError(t, err)
		assert.Equal(t, []Record{{1, 2}, {1, 0}}, idx.Records())
		assert.Equal(t, []uint32{1}, cs.Removed)
		assert.Equal(t, []uint32{0}, cs.Edited)
	})

	t.Run("lf after trailing cr", func(t *testing.T) {
		idx := Build("a\r")
		_, err := idx.ApplyEdit(InsertEdit(2, "\n"), StringSource("a\r\n"))
		require.NoError(t, err)
		assert.Equal(t, []Record{{1, 2}, {0, 0}}, idx.Records())
	})

	t.Run("split crlf", func(t *testing.T) {
		idx := Build("a\r\nb")
		cs, err := idx.ApplyEdit(InsertEdit(2, "x"), StringSource("a\rx\nb"))
		require.NoError(t, err)
		assert.Equal(t, []Record{{1, 1}, {1, 1}, {1, 0}}, idx.Records())
		assert.Equal(t, []uint32{1}, cs.Inserted)
	})

	t.Run("remove several lines", func(t *testing.T) {
		idx := Build("a\nb\nc\nd")
		cs, err := idx.ApplyEdit(DeleteEdit(1, 5), StringSource("a\nd"))
		require.NoError(t, err)
		assert.Equal(t, []uint32{2, 1}, cs.Removed)
		assert.Equal(t, []uint32{0}, cs.Edited)
		assert.Equal(t, []Record{{1, 1}, {1, 0}}, idx.Records())
	})
}

func TestApplyEditRejectsWithoutMutation(t *testing.T) {
	tests := []struct {
		name string
		edit Edit
		text string
		want error
	}{
		{"start after end", Edit{Start: 3, OldEnd: 2}, "ab\ncd", ErrInvalidEdit},
		{"beyond text", NewEdit(4, 9, ""), "ab\nc", ErrInvalidEdit},
		{"negative start", NewEdit(-1, 0, "x"), "xab\ncd", ErrInvalidEdit},
		{"bad delta", Edit{Start: 0, OldEnd: 0, NewLengthDelta: 2, Text: "x"}, "xab\ncd", ErrInvalidEdit},
		{"wrong length", InsertEdit(0, "x"), "ab\ncd", ErrIndexDesync},
		{"wrong text", InsertEdit(0, "x"), "yab\ncd", ErrIndexDesync},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Build("ab\ncd")
			before := idx.Records()

			_, err := idx.ApplyEdit(tt.edit, StringSource(tt.text))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
			assert.Equal(t, before, idx.Records())
			assert.Equal(t, ByteOffset(5), idx.Len())
		})
	}
}

func TestApplyEditDetectsSplitTerminator(t *testing.T) {
	idx := Build("ab\rcd")
	// The lone "\r" ending line 0 is followed by a "\n" the index never saw.
	_, err := idx.ApplyEdit(NewEdit(0, 1, "x"), StringSource("xb\r\nd"))
	require.ErrorIs(t, err, ErrIndexDesync)
	assert.Equal(t, []Record{{2, 1}, {2, 0}}, idx.Records())
}

func TestApplyEditNoOp(t *testing.T) {
	idx := Build("ab\ncd")
	cs, err := idx.ApplyEdit(InsertEdit(2, ""), StringSource("ab\ncd"))
	require.NoError(t, err)
	assert.True(t, cs.IsEmpty())
}

func TestSnapshotIsolation(t *testing.T) {
	idx := Build("a\nb")
	snap := idx.Snapshot()

	_, err := idx.ApplyEdit(InsertEdit(0, "x\ny\n"), StringSource("x\ny\na\nb"))
	require.NoError(t, err)

	assert.Equal(t, uint32(4), idx.LineCount())
	assert.Equal(t, uint32(2), snap.LineCount())
	assert.Equal(t, []Record{{1, 1}, {1, 0}}, snap.Records())
}

func TestLineChanges(t *testing.T) {
	tests := []struct {
		first, m, k uint32
		want        LineChangeSet
	}{
		{0, 1, 1, LineChangeSet{Edited: []uint32{0}}},
		{1, 1, 3, LineChangeSet{Inserted: []uint32{2, 3}, Edited: []uint32{1}}},
		{2, 3, 1, LineChangeSet{Removed: []uint32{4, 3}, Edited: []uint32{2}}},
	}
	for _, tt := range tests {
		got := lineChanges(tt.first, tt.m, tt.k)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, int(tt.k)-int(tt.m), got.LineDelta())
	}
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		text string
		want LineEnding
	}{
		{"", LF},
		{"abc", LF},
		{"a\nb\n", LF},
		{"a\r\nb\r\nc\n", CRLF},
		{"a\rb\rc", CR},
		{"a\nb\r\n", LF},
		{"a\r\nb\r", CRLF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLineEnding(tt.text, 0), "text %q", tt.text)
	}

	assert.Equal(t, LF, DetectLineEnding("a\nb\r\nc\r\nd\r\n", 1))
	assert.Equal(t, "crlf", CRLF.Name())
	assert.Equal(t, "\r", CR.String())

	idx := Build("x\r\ny\r\n")
	assert.Equal(t, CRLF, idx.LineEnding(StringSource("x\r\ny\r\n")))
}

func TestApplyEditBeforeTrailingEmptyLine(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		edit  Edit
		after string
		want  []Record
	}{
		{"insert at start", "abc\n", InsertEdit(0, "x"), "xabc\n", []Record{{4, 1}, {0, 0}}},
		{"insert at line end", "abc\n", InsertEdit(3, "x"), "abcx\n", []Record{{4, 1}, {0, 0}}},
		{"delete inside", "abc\r\n", DeleteEdit(1, 2), "ac\r\n", []Record{{2, 2}, {0, 0}}},
		{"insert line", "a\nbb\nccc\n", InsertEdit(8, "x\n"), "a\nbb\nccx\nc\n", []Record{{1, 1}, {2, 1}, {3, 1}, {1, 1}, {0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Build(tt.text)
			_, err := idx.ApplyEdit(tt.edit, StringSource(tt.after))
			require.NoError(t, err)

			require.NoError(t, idx.Validate())
			assert.Equal(t, tt.want, idx.Records())
			assert.Equal(t, Build(tt.after).Records(), idx.Records())

			pos, err := idx.PositionForOffset(idx.Len())
			require.NoError(t, err)
			assert.Equal(t, Position{Line: uint32(len(tt.want) - 1)}, pos)
		})
	}
}
