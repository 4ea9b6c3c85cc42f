package logging

// Field names for structured logging.
const (
	FieldError   = "err"
	FieldPath    = "path"
	FieldStore   = "store"
	FieldVersion = "version"
	FieldState   = "state"
	FieldBackend = "backend"
	FieldLang    = "language"
	FieldTheme   = "theme"

	// Edit fields.
	FieldStart    = "start"
	FieldOldEnd   = "old_end"
	FieldNewEnd   = "new_end"
	FieldInserted = "lines_inserted"
	FieldRemoved  = "lines_removed"
	FieldChanged  = "changed_ranges"
	FieldRanges   = "highlight_ranges"
	FieldDuration = "duration"
)
