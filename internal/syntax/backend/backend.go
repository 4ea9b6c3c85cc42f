// Package backend chooses a syntax backend for a document.
package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dshills/textstore/internal/logging"
	"github.com/dshills/textstore/internal/syntax"
	"github.com/dshills/textstore/internal/syntax/chroma"
	"github.com/dshills/textstore/internal/syntax/langdetect"
	"github.com/dshills/textstore/internal/syntax/rules"
	"github.com/dshills/textstore/internal/syntax/treesitter"
)

// Backend names accepted by Select.
const (
	Auto       = "auto"
	TreeSitter = "treesitter"
	Chroma     = "chroma"
	Rules      = "rules"
	None       = "none"
)

// Names lists the accepted backend names.
var Names = []string{Auto, TreeSitter, Chroma, Rules, None}

// Request describes the document a backend is chosen for.
type Request struct {
	// Backend is one of Names. Empty means Auto.
	Backend string

	// Filename and Content drive language detection.
	Filename string
	Content  []byte

	// Language overrides detection when set.
	Language string

	// Grammars provides rule grammars. A registry of the built-in grammars
	// is created when nil.
	Grammars *rules.Registry

	Logger *log.Logger
}

// Select returns the backend for req. Auto tries tree-sitter, then rule
// grammars, then chroma, and falls back to Plain.
func Select(req Request) (syntax.Backend, error) {
	lang := req.Language
	if lang == "" {
		lang = langdetect.Detect(req.Filename, req.Content)
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.Default()
	}

	switch req.Backend {
	case "", Auto:
		for _, name := range []string{TreeSitter, Rules, Chroma} {
			b, err := build(name, lang, req)
			if err == nil {
				logger.Debug("syntax backend selected", "backend", b.Name(), "language", lang)
				return b, nil
			}
			if !errors.Is(err, syntax.ErrUnknownLanguage) {
				logger.Warn("syntax backend failed", "backend", name, "language", lang, "err", err)
			}
		}
		return Plain{}, nil
	case None:
		return Plain{}, nil
	case TreeSitter, Rules, Chroma:
		return build(req.Backend, lang, req)
	}
	return nil, fmt.Errorf("%q: %w", req.Backend, syntax.ErrUnknownBackend)
}

func build(name, lang string, req Request) (syntax.Backend, error) {
	if lang == langdetect.Text {
		return nil, fmt.Errorf("%s: %w", name, syntax.ErrUnknownLanguage)
	}
	switch name {
	case TreeSitter:
		filename := req.Filename
		if req.Language != "" || filename == "" {
			filename = "document" + langdetect.Extension(lang)
		}
		return treesitter.New(filepath.Base(filename))
	case Rules:
		reg := req.Grammars
		if reg == nil {
			var err error
			if reg, err = rules.NewRegistry(); err != nil {
				return nil, err
			}
		}
		g, ok := reg.Get(lang)
		if !ok && req.Filename != "" {
			g, ok = reg.ForFile(req.Filename)
		}
		if !ok {
			return nil, fmt.Errorf("rules %q: %w", lang, syntax.ErrUnknownLanguage)
		}
		return rules.NewParser(g), nil
	default:
		return chroma.New(lang)
	}
}

// Plain is the backend for documents without highlighting. It produces no
// captures.
type Plain struct{}

type plainTree syntax.ByteOffset

func (t plainTree) Len() syntax.ByteOffset {
	return syntax.ByteOffset(t)
}

// Name implements syntax.Backend.
func (Plain) Name() string {
	return None
}

// Parse implements syntax.Parser.
func (Plain) Parse(ctx context.Context, src syntax.Source, old syntax.Tree, delta *syntax.Delta) (syntax.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return syntax.ParseResult{}, err
	}
	t := plainTree(src.Len())
	if old == nil || delta == nil {
		return syntax.ParseResult{Tree: t, ChangedRanges: syntax.WholeDocument(src)}, nil
	}
	return syntax.ParseResult{Tree: t, ChangedRanges: []syntax.ByteRange{delta.NewRange()}}, nil
}

// Captures implements syntax.Querier.
func (Plain) Captures(context.Context, syntax.Tree, syntax.Source, syntax.ByteRange) ([]syntax.CaptureSpan, error) {
	return nil, nil
}
