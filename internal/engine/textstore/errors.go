package textstore

import (
	"errors"

	"github.com/dshills/textstore/internal/engine/lineindex"
)

// Errors returned by store operations.
var (
	// ErrConcurrentEditRejected indicates an edit arrived while another edit
	// cycle was running, for example from an observer callback. Nothing was
	// changed.
	ErrConcurrentEditRejected = errors.New("concurrent edit rejected")

	// ErrOutOfRange indicates an offset, line or position outside the text.
	ErrOutOfRange = lineindex.ErrOutOfRange

	// ErrEditsOverlap indicates batch edits that overlap or share a start.
	ErrEditsOverlap = errors.New("edits overlap")

	// ErrReparseFailed indicates the parser or the capture query failed after
	// the text was updated. The text and line index are consistent; the
	// highlights of the edited region are dropped.
	ErrReparseFailed = errors.New("reparse failed")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrClosed indicates the store was closed.
	ErrClosed = errors.New("store is closed")
)
