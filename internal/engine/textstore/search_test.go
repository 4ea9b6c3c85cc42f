package textstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textstore/internal/engine/tracking"
)

const sampleScript = `/**
 * This is a text view with syntax highlighting
 * for the JavaScript programming language.
 */

let names = ["Steve Jobs", "Tim Cook", "Eddy Cue"]
let years = [1955, 1960, 1964]
printNamesAndYears(names, years)

// Print the year each person was born.
function printNamesAndYears(names, years) {
  for (let i = 0; i < names.length; i++) {
    console.log(names[i] + " was born in " + years[i])
  }
}
`

func TestSearchMatchMethods(t *testing.T) {
	s, _ := newStore(t, sampleScript)

	tests := []struct {
		name  string
		query SearchQuery
		want  int
	}{
		{"contains", SearchQuery{Text: "names"}, 7},
		{"full word", SearchQuery{Text: "names", Method: FullWord}, 5},
		{"starts with", SearchQuery{Text: "nam", Method: StartsWith}, 5},
		{"ends with", SearchQuery{Text: "rs", Method: EndsWith}, 6},
		{"regex", SearchQuery{Text: `"[A-Z][a-z]+ [A-Z][a-z]+"`, Method: RegularExpression}, 3},
		{"case sensitive", SearchQuery{Text: "Names", CaseSensitive: true}, 2},
		{"metacharacters are literal", SearchQuery{Text: "names[i]"}, 1},
		{"anchors match lines", SearchQuery{Text: `^let`, Method: RegularExpression}, 2},
		{"empty", SearchQuery{}, 0},
		{"empty matches skipped", SearchQuery{Text: `(?=let)`, Method: RegularExpression}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Search(tt.query)
			require.NoError(t, err)
			assert.Len(t, res, tt.want)
		})
	}
}

func TestSearchPositions(t *testing.T) {
	s, _ := newStore(t, "ab\r\nxab\nab")

	res, err := s.Search(SearchQuery{Text: "AB"})
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, tracking.Range{Start: 5, End: 7}, res[1].Range)
	assert.Equal(t, Position{Line: 1, Column: 1}, res[1].Start)
	assert.Equal(t, Position{Line: 1, Column: 3}, res[1].End)
	assert.Equal(t, Position{Line: 2, Column: 0}, res[2].Start)
}

func TestSearchRange(t *testing.T) {
	s, _ := newStore(t, "cat concat cat")

	res, err := s.Search(SearchQuery{Text: "cat", Method: StartsWith, Range: &tracking.Range{Start: 7, End: 14}})
	require.NoError(t, err)
	require.Len(t, res, 2, "range bounds act as word boundaries")
	assert.Equal(t, tracking.Range{Start: 7, End: 10}, res[0].Range)
	assert.Equal(t, tracking.Range{Start: 11, End: 14}, res[1].Range)

	_, err = s.Search(SearchQuery{Text: "cat", Range: &tracking.Range{Start: 3, End: 99}})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSearchInvalidPattern(t *testing.T) {
	s, _ := newStore(t, "abc")
	_, err := s.Search(SearchQuery{Text: "(", Method: RegularExpression})
	assert.Error(t, err)

	// The same text is literal under the other methods.
	res, err := s.Search(SearchQuery{Text: "("})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearchReplace(t *testing.T) {
	s, _ := newStore(t, "let first_name = last_name")

	res, err := s.SearchReplace(SearchQuery{Text: `(\w+)_name`, Method: RegularExpression}, `\u$1Name`)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "FirstName", res[0].Replacement)
	assert.Equal(t, "LastName", res[1].Replacement)

	// Templates only apply to regular expressions.
	res, err = s.SearchReplace(SearchQuery{Text: "first"}, `$1\n`)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, `$1\n`, res[0].Replacement)
}

func TestReplaceAll(t *testing.T) {
	s, _ := newStore(t, "kw one\nkw two\nKW three")
	ctx := context.Background()

	results, err := s.ReplaceAll(ctx, SearchQuery{Text: "kw", Method: FullWord, CaseSensitive: true}, "12")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "12 one\n12 two\nKW three", s.Text())
	assert.Equal(t, []string{"number@0-2", "number@7-9"}, names(s.Highlights()))

	// One undo step restores every match.
	_, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kw one\nkw two\nKW three", s.Text())
	assert.Equal(t, []string{"keyword@0-2", "keyword@7-9"}, names(s.Highlights()))

	results, err = s.ReplaceAll(ctx, SearchQuery{Text: "absent"}, "x")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReplaceAllRegexAcrossLines(t *testing.T) {
	s, _ := newStore(t, "a=1\nb=22\n")
	ctx := context.Background()

	_, err := s.ReplaceAll(ctx, SearchQuery{Text: `^(\w)=(\d+)$`, Method: RegularExpression}, `$2:\U$1`)
	require.NoError(t, err)
	assert.Equal(t, "1:A\n22:B\n", s.Text())
	assert.Equal(t, uint32(3), s.LineCount())
}

func TestReplaceMatchesStale(t *testing.T) {
	s, _ := newStore(t, "abc")
	ctx := context.Background()

	matches, err := s.SearchReplace(SearchQuery{Text: "c"}, "x")
	require.NoError(t, err)
	_, err = s.Delete(ctx, 1, 3)
	require.NoError(t, err)

	_, err = s.ReplaceMatches(ctx, matches)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, "a", s.Text())
}

func TestParseMatchMethod(t *testing.T) {
	for _, m := range []MatchMethod{Contains, FullWord, StartsWith, EndsWith, RegularExpression} {
		got, err := ParseMatchMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMatchMethod("fuzzy")
	assert.Error(t, err)
	assert.Equal(t, "MatchMethod(9)", MatchMethod(9).String())
}
