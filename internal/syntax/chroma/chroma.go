// Package chroma adapts chroma lexers to the syntax backend interface.
// Chroma lexers are not incremental, so every parse relexes the document and
// reports it as changed in full.
package chroma

import (
	"context"
	"fmt"
	"sort"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/textstore/internal/syntax"
)

type tree struct {
	lexer  chroma.Lexer
	length syntax.ByteOffset
	spans  []syntax.CaptureSpan
}

func (t *tree) Len() syntax.ByteOffset {
	return t.length
}

// Parser lexes documents with a chroma lexer.
type Parser struct {
	lexer chroma.Lexer
}

// New returns a parser for the named language, e.g. "go" or "python".
func New(language string) (*Parser, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil, fmt.Errorf("chroma %q: %w", language, syntax.ErrUnknownLanguage)
	}
	return &Parser{lexer: chroma.Coalesce(lexer)}, nil
}

// ForFile returns a parser chosen by file name, falling back to content
// analysis.
func ForFile(filename string, content string) (*Parser, error) {
	lexer := lexers.Match(filename)
	if lexer == nil && content != "" {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		return nil, fmt.Errorf("chroma %q: %w", filename, syntax.ErrUnknownLanguage)
	}
	return &Parser{lexer: chroma.Coalesce(lexer)}, nil
}

// Name implements syntax.Backend.
func (p *Parser) Name() string {
	return "chroma/" + p.lexer.Config().Name
}

// Parse implements syntax.Parser. The old tree and delta are ignored.
func (p *Parser) Parse(ctx context.Context, src syntax.Source, _ syntax.Tree, _ *syntax.Delta) (syntax.ParseResult, error) {
	text := syntax.Text(src)
	it, err := p.lexer.Tokenise(nil, text)
	if err != nil {
		return syntax.ParseResult{}, fmt.Errorf("%s: %w", p.Name(), err)
	}

	t := &tree{lexer: p.lexer, length: syntax.ByteOffset(len(text))}
	var off syntax.ByteOffset
	for _, tok := range it.Tokens() {
		start := off
		off += syntax.ByteOffset(len(tok.Value))
		if start >= t.length {
			// Lexers may append a newline the text does not have.
			break
		}
		name := CaptureName(tok.Type)
		if name == "" {
			continue
		}
		end := min(off, t.length)
		if end > start {
			t.spans = append(t.spans, syntax.CaptureSpan{
				Range: syntax.ByteRange{Start: start, End: end},
				Name:  name,
			})
		}
	}
	if err := ctx.Err(); err != nil {
		return syntax.ParseResult{}, err
	}
	return syntax.ParseResult{Tree: t, ChangedRanges: syntax.WholeDocument(src)}, nil
}

// Captures implements syntax.Querier.
func (p *Parser) Captures(_ context.Context, tr syntax.Tree, _ syntax.Source, r syntax.ByteRange) ([]syntax.CaptureSpan, error) {
	t, ok := tr.(*tree)
	if !ok || t.lexer != p.lexer {
		return nil, fmt.Errorf("%s: %w", p.Name(), syntax.ErrForeignTree)
	}
	i := sort.Search(len(t.spans), func(i int) bool { return t.spans[i].Range.End > r.Start })
	var out []syntax.CaptureSpan
	for ; i < len(t.spans) && t.spans[i].Range.Start < r.End; i++ {
		out = append(out, t.spans[i])
	}
	return syntax.Clip(out, r), nil
}

// CaptureName maps a chroma token type to a capture name. Plain text and
// unclassified names map to "".
func CaptureName(tt chroma.TokenType) string {
	switch {
	case tt == chroma.Error:
		return "invalid"
	case tt == chroma.KeywordType:
		return "type.builtin"
	case tt == chroma.KeywordConstant:
		return "constant.language"
	case tt == chroma.KeywordDeclaration:
		return "keyword.declaration"
	case tt == chroma.KeywordNamespace:
		return "keyword.other"
	case tt.InCategory(chroma.Keyword):
		return "keyword"

	case tt == chroma.CommentPreproc:
		return "meta"
	case tt == chroma.CommentMultiline:
		return "comment.block"
	case tt == chroma.CommentSingle:
		return "comment.line"
	case tt.InCategory(chroma.Comment):
		return "comment"

	case tt == chroma.LiteralStringEscape:
		return "string.escape"
	case tt == chroma.LiteralStringRegex:
		return "string.regexp"
	case tt.InSubCategory(chroma.LiteralString):
		return "string"
	case tt.InSubCategory(chroma.LiteralNumber):
		return "number"

	case tt.InCategory(chroma.Operator):
		return "operator"
	case tt.InCategory(chroma.Punctuation):
		return "punctuation"

	case tt == chroma.NameFunction:
		return "function"
	case tt == chroma.NameBuiltin:
		return "function.builtin"
	case tt == chroma.NameClass:
		return "type.class"
	case tt == chroma.NameTag:
		return "tag"
	case tt == chroma.NameAttribute:
		return "attribute"
	case tt == chroma.NameNamespace:
		return "namespace"
	case tt == chroma.NameLabel:
		return "label"
	case tt == chroma.NameConstant:
		return "constant"
	case tt == chroma.NameDecorator:
		return "meta"

	case tt == chroma.GenericHeading, tt == chroma.GenericSubheading:
		return "markup.heading"
	case tt == chroma.GenericStrong:
		return "markup.bold"
	case tt == chroma.GenericEmph:
		return "markup.italic"
	case tt == chroma.GenericDeleted:
		return "markup.strike"
	}
	return ""
}
