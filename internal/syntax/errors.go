package syntax

import "errors"

// Errors returned by backends.
var (
	// ErrUnknownLanguage indicates no grammar or lexer exists for a language.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrForeignTree indicates a tree was handed to a backend that did not
	// produce it.
	ErrForeignTree = errors.New("tree belongs to another backend")

	// ErrUnknownBackend indicates a backend name that is not registered.
	ErrUnknownBackend = errors.New("unknown syntax backend")
)
