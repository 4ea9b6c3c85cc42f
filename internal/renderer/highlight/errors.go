package highlight

import (
	"errors"

	"github.com/dshills/textstore/internal/engine/lineindex"
)

var (
	// ErrOutOfRange indicates a capture span beyond the document. It is the
	// line index error, so errors.Is matches either name.
	ErrOutOfRange = lineindex.ErrOutOfRange

	// ErrNoResolveFunction indicates a Lua script that defines no resolve
	// function.
	ErrNoResolveFunction = errors.New("lua script defines no resolve function")

	// ErrUnknownBaseTheme indicates a theme file extending a theme that is
	// not registered.
	ErrUnknownBaseTheme = errors.New("unknown base theme")
)
