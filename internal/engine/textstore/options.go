package textstore

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dshills/textstore/internal/renderer/highlight"
	"github.com/dshills/textstore/internal/syntax"
	"github.com/dshills/textstore/internal/syntax/backend"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 1000
)

// Option configures a Store during creation.
type Option func(*Store)

// WithBackend sets the parser backend. It takes precedence over
// WithSelection.
func WithBackend(b syntax.Backend) Option {
	return func(s *Store) {
		s.backend = b
	}
}

// WithSelection picks the backend with backend.Select. The request's Content
// is filled with the initial text.
func WithSelection(req backend.Request) Option {
	return func(s *Store) {
		s.selection = &req
	}
}

// WithResolver sets the resolver that styles capture names. The default is
// the built-in dark theme.
func WithResolver(r highlight.AttributeResolver) Option {
	return func(s *Store) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithID sets the store ID instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(s *Store) {
		s.id = id
	}
}

// WithDeferredHighlighting moves reparsing and highlighting of edits to a
// background worker. Line structure is still updated synchronously.
func WithDeferredHighlighting() Option {
	return func(s *Store) {
		s.deferred = true
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(s *Store) {
		if max > 0 {
			s.maxUndo = max
		}
	}
}
