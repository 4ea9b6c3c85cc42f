package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedEncodingCombination indicates a pattern encoding that
	// cannot be matched against the requested subject encoding.
	ErrUnsupportedEncodingCombination = errors.New("unsupported encoding combination")

	// ErrAllocationFailure indicates a pattern or subject over the
	// configured size budget.
	ErrAllocationFailure = errors.New("pattern allocation failure")

	// ErrInvalidStart indicates a start offset outside the subject or inside
	// a multi-byte sequence.
	ErrInvalidStart = errors.New("invalid match start")
)

// CompileError reports a pattern that failed to compile.
type CompileError struct {
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %q: %v", e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
