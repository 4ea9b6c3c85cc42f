package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateExpand(t *testing.T) {
	m := MustCompile(`(\w+)@(\w+)`)
	subject := "mail bob@example now"
	res, ok, err := m.MatchString(subject, 0)
	require.NoError(t, err)
	require.True(t, ok)

	tests := []struct {
		template string
		want     string
	}{
		{"hello world", "hello world"},
		{"$1", "bob"},
		{"$2 at $1", "example at bob"},
		{"$1$1", "bobbob"},
		{"$0!", "bob@example!"},
		{`\$1`, "$1"},
		{`\$1\$2`, "$1$2"},
		{"$9", "$9"},
		{"cost $", "cost $"},
		{`a\nb\tc\rd`, "a\nb\tc\rd"},
		{`back\\slash`, `back\slash`},
		{`\uhi $1`, `\uhi bob`},
		{`\u$1`, "Bob"},
		{`\U$2`, "EXAMPLE"},
		{`\u\u$1`, "BOb"},
		{`\U\l$1`, "BOB"},
		{`\U$0`, "bob@example"},
		{`\x`, `\x`},
		{`end\`, `end\`},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTemplate(tt.template).Expand(res, subject))
		})
	}
}

func TestTemplateLowercase(t *testing.T) {
	m := MustCompile(`(\w+)`)
	subject := "ÉCOLE"
	res, ok, err := m.MatchString(subject, 0)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "éCOLE", ParseTemplate(`\l$1`).Expand(res, subject))
	assert.Equal(t, "école", ParseTemplate(`\L$1`).Expand(res, subject))
}

func TestTemplateUnmatchedGroup(t *testing.T) {
	m := MustCompile(`a(b)?c`)
	res, ok, err := m.MatchString("ac", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", ParseTemplate("[$1]").Expand(res, "ac"))
}

func TestTemplateHasGroups(t *testing.T) {
	assert.True(t, ParseTemplate("x$1").HasGroups())
	assert.False(t, ParseTemplate(`x\$1`).HasGroups())
	assert.False(t, ParseTemplate("").HasGroups())
}

func TestEscape(t *testing.T) {
	m, err := CompileString(Escape("a.b(c)*"), Options{})
	require.NoError(t, err)
	res, ok, err := m.MatchString("xa.b(c)*", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, res.Start)

	_, ok, err = m.MatchString("aXb(c)", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}
