package pattern

import (
	"fmt"
	"sort"
	"time"

	"github.com/dlclark/regexp2"
)

// Syntax selects the regular expression dialect.
type Syntax uint8

const (
	// SyntaxPerl is the default .NET/Perl-style dialect.
	SyntaxPerl Syntax = iota
	// SyntaxECMAScript follows JavaScript semantics.
	SyntaxECMAScript
	// SyntaxRE2 accepts RE2-only constructs such as \z.
	SyntaxRE2
)

// DefaultMaxPatternBytes bounds the size of a pattern accepted by Compile.
const DefaultMaxPatternBytes = 64 << 10

// Options configure compilation.
type Options struct {
	PatternEncoding Encoding
	TargetEncoding  Encoding
	IgnoreCase      bool
	Multiline       bool
	Syntax          Syntax

	// Timeout bounds a single match; zero means no limit.
	Timeout time.Duration

	// MaxPatternBytes bounds the pattern size; zero means
	// DefaultMaxPatternBytes.
	MaxPatternBytes int
}

func (o Options) regexpOptions() regexp2.RegexOptions {
	opts := regexp2.None
	if o.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	if o.Multiline {
		opts |= regexp2.Multiline
	}
	switch o.Syntax {
	case SyntaxECMAScript:
		opts |= regexp2.ECMAScript
	case SyntaxRE2:
		opts |= regexp2.RE2
	}
	return opts
}

// Matcher is a compiled pattern. It is safe for concurrent use.
type Matcher struct {
	source string
	opts   Options
	re     *regexp2.Regexp
}

// Group is one capture group of a match. Unmatched groups have Matched
// false.
type Group struct {
	Name       string
	Start, End int
	Matched    bool
}

// MatchResult is a successful match. Offsets are bytes in the subject's
// encoding; Groups[0] is the whole match.
type MatchResult struct {
	Start, End int
	Groups     []Group
}

// Len returns the byte length of the match.
func (m MatchResult) Len() int {
	return m.End - m.Start
}

// Group returns the named group.
func (m MatchResult) Group(name string) (Group, bool) {
	for _, g := range m.Groups {
		if g.Name == name {
			return g, g.Matched
		}
	}
	return Group{}, false
}

// Compile compiles pattern, given in opts.PatternEncoding, for subjects in
// opts.TargetEncoding.
func Compile(pattern []byte, opts Options) (*Matcher, error) {
	if !Compatible(opts.PatternEncoding, opts.TargetEncoding) {
		return nil, fmt.Errorf("%w: pattern %s, target %s",
			ErrUnsupportedEncodingCombination, opts.PatternEncoding, opts.TargetEncoding)
	}
	limit := opts.MaxPatternBytes
	if limit <= 0 {
		limit = DefaultMaxPatternBytes
	}
	if len(pattern) > limit {
		return nil, fmt.Errorf("%w: pattern of %d bytes exceeds %d", ErrAllocationFailure, len(pattern), limit)
	}

	src, err := decodePattern(pattern, opts.PatternEncoding)
	if err != nil {
		return nil, &CompileError{Pattern: string(pattern), Err: err}
	}
	re, err := regexp2.Compile(src, opts.regexpOptions())
	if err != nil {
		return nil, &CompileError{Pattern: src, Err: err}
	}
	if opts.Timeout > 0 {
		re.MatchTimeout = opts.Timeout
	}
	return &Matcher{source: src, opts: opts, re: re}, nil
}

// CompileString compiles a UTF-8 pattern for UTF-8 subjects.
func CompileString(pattern string, opts Options) (*Matcher, error) {
	opts.PatternEncoding, opts.TargetEncoding = UTF8, UTF8
	return Compile([]byte(pattern), opts)
}

// Escape quotes the metacharacters of s so it matches itself literally.
func Escape(s string) string {
	return regexp2.Escape(s)
}

// MustCompile is like CompileString but panics on error. It is meant for
// patterns fixed at build time.
func MustCompile(pattern string) *Matcher {
	m, err := CompileString(pattern, Options{})
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the pattern as UTF-8.
func (m *Matcher) String() string {
	return m.source
}

// Options returns the options the matcher was compiled with.
func (m *Matcher) Options() Options {
	return m.opts
}

// Match finds the first match in text at or after byte offset start. text
// is in the target encoding. It reports false when nothing matches.
func (m *Matcher) Match(text []byte, start int) (MatchResult, bool, error) {
	runes, offsets := decodeSubject(text, m.opts.TargetEncoding)
	return m.match(runes, offsets, start)
}

// MatchString is Match for UTF-8 subjects.
func (m *Matcher) MatchString(text string, start int) (MatchResult, bool, error) {
	runes, offsets := decodeSubject([]byte(text), UTF8)
	return m.match(runes, offsets, start)
}

// Subject is UTF-8 text decoded once for repeated matching.
type Subject struct {
	text    string
	runes   []rune
	offsets []int
}

// NewSubject decodes text for use with MatchSubject.
func NewSubject(text string) *Subject {
	runes, offsets := decodeSubject([]byte(text), UTF8)
	return &Subject{text: text, runes: runes, offsets: offsets}
}

// Text returns the subject text.
func (s *Subject) Text() string {
	return s.text
}

// MatchSubject is MatchString over a pre-decoded subject. The matcher must
// target UTF-8.
func (m *Matcher) MatchSubject(s *Subject, start int) (MatchResult, bool, error) {
	return m.match(s.runes, s.offsets, start)
}

// FindAllString returns every non-overlapping match in a UTF-8 subject.
func (m *Matcher) FindAllString(text string) ([]MatchResult, error) {
	runes, offsets := decodeSubject([]byte(text), UTF8)
	var out []MatchResult
	for pos := 0; pos <= len(text); {
		res, ok, err := m.match(runes, offsets, pos)
		if err != nil || !ok {
			return out, err
		}
		out = append(out, res)
		if res.End > pos {
			pos = res.End
			continue
		}
		if res.End >= len(text) {
			break
		}
		// Step past an empty match to the next rune.
		pos = offsets[sort.SearchInts(offsets, res.End+1)]
	}
	return out, nil
}

func (m *Matcher) match(runes []rune, offsets []int, start int) (MatchResult, bool, error) {
	at := sort.SearchInts(offsets, start)
	if start < 0 || at >= len(offsets) || offsets[at] != start {
		return MatchResult{}, false, fmt.Errorf("%w: %d", ErrInvalidStart, start)
	}

	match, err := m.re.FindRunesMatchStartingAt(runes, at)
	if err != nil {
		return MatchResult{}, false, fmt.Errorf("match %q: %w", m.source, err)
	}
	if match == nil {
		return MatchResult{}, false, nil
	}

	res := MatchResult{
		Start: offsets[match.Index],
		End:   offsets[match.Index+match.Length],
	}
	for _, g := range match.Groups() {
		group := Group{Name: g.Name}
		if len(g.Captures) > 0 {
			group.Matched = true
			group.Start = offsets[g.Index]
			group.End = offsets[g.Index+g.Length]
		}
		res.Groups = append(res.Groups, group)
	}
	return res, true, nil
}
