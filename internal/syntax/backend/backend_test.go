package backend

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/engine/tracking"
	"github.com/dshills/textstore/internal/syntax"
)

func TestSelectExplicit(t *testing.T) {
	tests := []struct {
		backend  string
		filename string
		prefix   string
	}{
		{Rules, "main.go", "rules/go"},
		{Chroma, "main.go", "chroma/"},
		{TreeSitter, "main.go", "treesitter/"},
		{None, "main.go", "none"},
		{Auto, "notes.txt", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.backend+"/"+tt.filename, func(t *testing.T) {
			b, err := Select(Request{Backend: tt.backend, Filename: tt.filename})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(b.Name(), tt.prefix), b.Name())
		})
	}
}

func TestSelectAutoPrefersTreeSitter(t *testing.T) {
	b, err := Select(Request{Filename: "main.go"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.Name(), "treesitter/"), b.Name())
}

func TestSelectLanguageOverride(t *testing.T) {
	b, err := Select(Request{Backend: Rules, Filename: "script", Language: "python"})
	require.NoError(t, err)
	assert.Equal(t, "rules/python", b.Name())
}

func TestSelectErrors(t *testing.T) {
	_, err := Select(Request{Backend: "vim"})
	assert.ErrorIs(t, err, syntax.ErrUnknownBackend)

	_, err = Select(Request{Backend: Rules, Filename: "notes.txt"})
	assert.ErrorIs(t, err, syntax.ErrUnknownLanguage)
}

func TestPlain(t *testing.T) {
	var p Plain
	src := lineindex.StringSource("ab\ncd")
	res, err := p.Parse(context.Background(), src, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, syntax.WholeDocument(src), res.ChangedRanges)

	edit := lineindex.InsertEdit(1, "xyz")
	delta, err := tracking.Translate(edit, lineindex.Build("ab\ncd"), lineindex.Build("axyzb\ncd"))
	require.NoError(t, err)
	res, err = p.Parse(context.Background(), lineindex.StringSource("axyzb\ncd"), res.Tree, &delta)
	require.NoError(t, err)
	assert.Equal(t, []syntax.ByteRange{{Start: 1, End: 4}}, res.ChangedRanges)

	spans, err := p.Captures(context.Background(), res.Tree, src, syntax.ByteRange{Start: 0, End: 5})
	require.NoError(t, err)
	assert.Empty(t, spans)
}
