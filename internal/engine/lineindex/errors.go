package lineindex

import "errors"

// Errors returned by index operations.
var (
	// ErrOutOfRange indicates an offset or line number outside the current
	// bounds. Queries never clamp.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidEdit indicates an edit whose offsets or length delta are
	// inconsistent.
	ErrInvalidEdit = errors.New("invalid edit")

	// ErrIndexDesync indicates the text handed to ApplyEdit does not agree
	// with the index and the edit. The index is left unchanged.
	ErrIndexDesync = errors.New("line index out of sync with text")
)
