package textstore

import (
	"context"
	"fmt"

	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/engine/tracking"
	"github.com/dshills/textstore/internal/syntax/pattern"
)

// MatchMethod selects how the text of a SearchQuery is matched.
type MatchMethod uint8

const (
	// Contains matches the text anywhere.
	Contains MatchMethod = iota
	// FullWord matches the text as a whole word.
	FullWord
	// StartsWith matches the text at the start of a word.
	StartsWith
	// EndsWith matches the text at the end of a word.
	EndsWith
	// RegularExpression treats the text as a pattern.
	RegularExpression
)

var matchMethodNames = [...]string{"contains", "fullWord", "startsWith", "endsWith", "regex"}

func (m MatchMethod) String() string {
	if int(m) < len(matchMethodNames) {
		return matchMethodNames[m]
	}
	return fmt.Sprintf("MatchMethod(%d)", m)
}

// ParseMatchMethod returns the method with the given name.
func ParseMatchMethod(name string) (MatchMethod, error) {
	for i, n := range matchMethodNames {
		if n == name {
			return MatchMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown match method %q", name)
}

// SearchQuery describes what to look for. ^ and $ match at line boundaries.
type SearchQuery struct {
	Text          string
	Method        MatchMethod
	CaseSensitive bool

	// Range limits the search to part of the text. Its bounds act as the
	// bounds of the text. Nil searches everything.
	Range *tracking.Range
}

func (q SearchQuery) pattern() string {
	escaped := pattern.Escape(q.Text)
	switch q.Method {
	case FullWord:
		return `\b` + escaped + `\b`
	case StartsWith:
		return `\b` + escaped
	case EndsWith:
		return escaped + `\b`
	case RegularExpression:
		return q.Text
	default:
		return escaped
	}
}

func (q SearchQuery) compile() (*pattern.Matcher, error) {
	m, err := pattern.CompileString(q.pattern(), pattern.Options{
		IgnoreCase: !q.CaseSensitive,
		Multiline:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Text, err)
	}
	return m, nil
}

// SearchResult is one match.
type SearchResult struct {
	Range      tracking.Range
	Start, End Position
}

// SearchReplaceResult is a match and the text that replaces it.
type SearchReplaceResult struct {
	SearchResult
	Replacement string
}

// Search returns the non-empty matches of q in document order. An empty
// query matches nothing.
func (s *Store) Search(q SearchQuery) ([]SearchResult, error) {
	var out []SearchResult
	err := s.search(q, func(r SearchResult, _ pattern.MatchResult, _ string) {
		out = append(out, r)
	})
	return out, err
}

// SearchReplace returns the matches of q with their replacements. For
// regular expression queries replacement is a template: $N inserts group N
// and \u, \U, \l and \L change the case of the group that follows. Other
// methods insert replacement as written.
func (s *Store) SearchReplace(q SearchQuery, replacement string) ([]SearchReplaceResult, error) {
	expand := func(pattern.MatchResult, string) string { return replacement }
	if q.Method == RegularExpression {
		t := pattern.ParseTemplate(replacement)
		expand = t.Expand
	}

	var out []SearchReplaceResult
	err := s.search(q, func(r SearchResult, m pattern.MatchResult, subject string) {
		out = append(out, SearchReplaceResult{SearchResult: r, Replacement: expand(m, subject)})
	})
	return out, err
}

// ReplaceMatches replaces the given matches as one undoable batch. The
// matches must come from the current version of the text.
func (s *Store) ReplaceMatches(ctx context.Context, matches []SearchReplaceResult) ([]EditResult, error) {
	if len(matches) == 0 {
		return nil, nil
	}
	edits := make([]Edit, len(matches))
	for i, m := range matches {
		edits[i] = lineindex.NewEdit(m.Range.Start, m.Range.End, m.Replacement)
	}
	return s.ReplaceBatch(ctx, edits)
}

// ReplaceAll replaces every match of q. See SearchReplace for the
// replacement syntax.
func (s *Store) ReplaceAll(ctx context.Context, q SearchQuery, replacement string) ([]EditResult, error) {
	matches, err := s.SearchReplace(q, replacement)
	if err != nil {
		return nil, err
	}
	return s.ReplaceMatches(ctx, matches)
}

// search runs q over one version of the text and calls fn for every
// non-empty match.
func (s *Store) search(q SearchQuery, fn func(SearchResult, pattern.MatchResult, string)) error {
	if q.Text == "" {
		return nil
	}
	m, err := q.compile()
	if err != nil {
		return err
	}

	text, idx := s.current()
	base := ByteOffset(0)
	end := text.Len()
	if q.Range != nil {
		if q.Range.Start < 0 || q.Range.End < q.Range.Start || q.Range.End > end {
			return fmt.Errorf("search range %v of %d bytes: %w", *q.Range, end, ErrOutOfRange)
		}
		base, end = q.Range.Start, q.Range.End
	}

	subject := text.Slice(base, end)
	matches, err := m.FindAllString(subject)
	if err != nil {
		return fmt.Errorf("search %q: %w", q.Text, err)
	}
	for _, match := range matches {
		if match.Len() == 0 {
			continue
		}
		r := tracking.Range{Start: base + ByteOffset(match.Start), End: base + ByteOffset(match.End)}
		start, err := idx.PositionForOffset(r.Start)
		if err != nil {
			return err
		}
		stop, err := idx.PositionForOffset(r.End)
		if err != nil {
			return err
		}
		fn(SearchResult{Range: r, Start: start, End: stop}, match, subject)
	}
	return nil
}
