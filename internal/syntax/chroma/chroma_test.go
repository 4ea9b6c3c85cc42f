package chroma

import (
	"context"
	"fmt"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/syntax"
)

func names(spans []syntax.CaptureSpan) map[string]string {
	out := make(map[string]string)
	for _, s := range spans {
		out[fmt.Sprint(s.Range.Start)] = s.Name
	}
	return out
}

func TestParseGo(t *testing.T) {
	p, err := New("go")
	require.NoError(t, err)
	assert.Equal(t, "chroma/Go", p.Name())

	text := "package main\n\n// hi\nvar s = \"x\"\n"
	src := lineindex.StringSource(text)
	res, err := p.Parse(context.Background(), src, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, syntax.WholeDocument(src), res.ChangedRanges)
	assert.Equal(t, syntax.ByteOffset(len(text)), res.Tree.Len())

	spans, err := p.Captures(context.Background(), res.Tree, src, syntax.ByteRange{Start: 0, End: src.Len()})
	require.NoError(t, err)
	got := names(spans)
	assert.Equal(t, "keyword.other", got["0"])
	assert.Contains(t, got["14"], "comment")
	assert.Equal(t, "string", got["28"])

	for i := 1; i < len(spans); i++ {
		assert.LessOrEqual(t, spans[i-1].Range.End, spans[i].Range.Start)
	}
	for _, s := range spans {
		assert.LessOrEqual(t, s.Range.End, src.Len())
	}
}

func TestCapturesClipped(t *testing.T) {
	p, err := New("go")
	require.NoError(t, err)
	src := lineindex.StringSource("package main\n")
	res, err := p.Parse(context.Background(), src, nil, nil)
	require.NoError(t, err)

	spans, err := p.Captures(context.Background(), res.Tree, src, syntax.ByteRange{Start: 2, End: 5})
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, syntax.ByteRange{Start: 2, End: 5}, spans[0].Range)
}

func TestUnknownLanguage(t *testing.T) {
	_, err := New("no-such-language")
	assert.ErrorIs(t, err, syntax.ErrUnknownLanguage)

	_, err = ForFile("file.unknown-extension", "")
	assert.ErrorIs(t, err, syntax.ErrUnknownLanguage)

	p, err := ForFile("main.py", "")
	require.NoError(t, err)
	assert.Equal(t, "chroma/Python", p.Name())
}

func TestForeignTree(t *testing.T) {
	goParser, err := New("go")
	require.NoError(t, err)
	pyParser, err := New("python")
	require.NoError(t, err)

	src := lineindex.StringSource("x = 1\n")
	res, err := pyParser.Parse(context.Background(), src, nil, nil)
	require.NoError(t, err)
	_, err = goParser.Captures(context.Background(), res.Tree, src, syntax.ByteRange{Start: 0, End: 1})
	assert.ErrorIs(t, err, syntax.ErrForeignTree)
}

func TestCaptureName(t *testing.T) {
	cases := map[chroma.TokenType]string{
		chroma.Keyword:             "keyword",
		chroma.KeywordReserved:     "keyword",
		chroma.KeywordType:         "type.builtin",
		chroma.KeywordConstant:     "constant.language",
		chroma.CommentSingle:       "comment.line",
		chroma.CommentMultiline:    "comment.block",
		chroma.CommentHashbang:     "comment",
		chroma.LiteralStringDouble: "string",
		chroma.LiteralStringEscape: "string.escape",
		chroma.LiteralNumberHex:    "number",
		chroma.NameFunction:        "function",
		chroma.NameBuiltin:         "function.builtin",
		chroma.Operator:            "operator",
		chroma.Punctuation:         "punctuation",
		chroma.GenericHeading:      "markup.heading",
		chroma.Text:                "",
		chroma.Name:                "",
	}
	for tt, want := range cases {
		assert.Equal(t, want, CaptureName(tt), tt.String())
	}
}
