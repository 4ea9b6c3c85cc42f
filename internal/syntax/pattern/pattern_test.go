package pattern

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchString(t *testing.T) {
	m := MustCompile(`a(b)?c`)

	res, ok, err := m.MatchString("xxac", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, res.Start)
	assert.Equal(t, 4, res.End)
	require.Len(t, res.Groups, 2)
	assert.True(t, res.Groups[0].Matched)
	assert.False(t, res.Groups[1].Matched)

	_, ok, err = m.MatchString("xxac", 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMultibyteOffsets(t *testing.T) {
	m := MustCompile(`(?<word>[a-z]+)`)
	res, ok, err := m.MatchString("日本語abc", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, res.Start)
	assert.Equal(t, 12, res.End)

	g, ok := res.Group("word")
	require.True(t, ok)
	assert.Equal(t, 9, g.Start)

	_, _, err = m.MatchString("日本", 1)
	assert.ErrorIs(t, err, ErrInvalidStart)
	_, _, err = m.MatchString("abc", 4)
	assert.ErrorIs(t, err, ErrInvalidStart)
}

func TestIgnoreCase(t *testing.T) {
	m, err := CompileString(`select`, Options{IgnoreCase: true})
	require.NoError(t, err)
	_, ok, err := m.MatchString("SeLeCt *", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUTF16Subject(t *testing.T) {
	m, err := Compile([]byte(`b+`), Options{PatternEncoding: ASCII, TargetEncoding: UTF16LE})
	require.NoError(t, err)

	subject, err := EncodeString("aébbc", UTF16LE)
	require.NoError(t, err)
	res, ok, err := m.Match(subject, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, res.Start)
	assert.Equal(t, 8, res.End)

	m, err = Compile([]byte(`x`), Options{PatternEncoding: ASCII, TargetEncoding: UTF16BE})
	require.NoError(t, err)
	subject, err = EncodeString("😀x", UTF16BE)
	require.NoError(t, err)
	res, ok, err = m.Match(subject, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, res.Start)
	assert.Equal(t, 6, res.End)
}

func TestUTF16Pattern(t *testing.T) {
	p, err := EncodeString("é+", UTF16LE)
	require.NoError(t, err)
	m, err := Compile(p, Options{PatternEncoding: UTF16LE, TargetEncoding: UTF8})
	require.NoError(t, err)
	assert.Equal(t, "é+", m.String())

	res, ok, err := m.MatchString("aéé!", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, res.Start)
	assert.Equal(t, 5, res.End)
}

func TestLatin1(t *testing.T) {
	p, err := EncodeString("ü", Latin1)
	require.NoError(t, err)
	m, err := Compile(p, Options{PatternEncoding: Latin1, TargetEncoding: Latin1})
	require.NoError(t, err)

	res, ok, err := m.Match([]byte{'a', 0xFC, 'b'}, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, res.Start)
	assert.Equal(t, 2, res.End)
}

func TestUnsupportedEncodingCombination(t *testing.T) {
	tests := []struct {
		pattern, target Encoding
		ok              bool
	}{
		{UTF8, UTF8, true},
		{ASCII, Latin1, true},
		{UTF16BE, UTF8, true},
		{Latin1, UTF8, false},
		{UTF8, ASCII, false},
		{Encoding(99), UTF8, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, Compatible(tt.pattern, tt.target), "%s -> %s", tt.pattern, tt.target)
	}

	_, err := Compile([]byte("x"), Options{PatternEncoding: Latin1, TargetEncoding: UTF16LE})
	assert.ErrorIs(t, err, ErrUnsupportedEncodingCombination)
}

func TestCompileErrors(t *testing.T) {
	_, err := CompileString(`(unclosed`, Options{})
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "(unclosed", ce.Pattern)

	_, err = CompileString(strings.Repeat("a", 100), Options{MaxPatternBytes: 10})
	assert.ErrorIs(t, err, ErrAllocationFailure)

	_, err = Compile([]byte{0xff}, Options{})
	require.True(t, errors.As(err, &ce))
}

func TestFindAllString(t *testing.T) {
	m := MustCompile(`\d+`)
	all, err := m.FindAllString("a1b22c333")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 6, all[2].Start)
	assert.Equal(t, 9, all[2].End)

	empty, err := MustCompile(`x*`).FindAllString("ab")
	require.NoError(t, err)
	assert.Len(t, empty, 3)
}

func TestSubject(t *testing.T) {
	s := NewSubject("let x = 42")
	m := MustCompile(`\d+`)
	res, ok, err := m.MatchSubject(s, 4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", s.Text()[res.Start:res.End])
}

func TestCacheRecompileKeepsPrevious(t *testing.T) {
	c := NewCache()

	first, err := c.Recompile("keyword", []byte(`\bfunc\b`), Options{})
	require.NoError(t, err)

	_, err = c.Recompile("keyword", []byte(`(`), Options{})
	require.Error(t, err)
	var ce *CompileError
	assert.True(t, errors.As(err, &ce))

	got, ok := c.Named("keyword")
	require.True(t, ok)
	assert.Same(t, first, got)

	a, err := c.Compile(`\w+`, Options{})
	require.NoError(t, err)
	b, err := c.Compile(`\w+`, Options{})
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 2, c.Len())
}
