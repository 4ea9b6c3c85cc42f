package tracking

import (
	"fmt"
	"strings"

	"github.com/dshills/textstore/internal/engine/lineindex"
)

// ChangeType categorizes the type of a change.
type ChangeType uint8

const (
	// ChangeInsert indicates text was inserted (OldText is empty).
	ChangeInsert ChangeType = iota

	// ChangeDelete indicates text was deleted (NewText is empty).
	ChangeDelete

	// ChangeReplace indicates text was replaced (both OldText and NewText present).
	ChangeReplace
)

// String returns a human-readable representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change records an applied edit.
type Change struct {
	Type ChangeType

	// Range is the affected range in the old text.
	Range Range

	// NewRange is the affected range in the new text.
	NewRange Range

	OldText string
	NewText string

	// Version is the document version after the change.
	Version uint64
}

// NewChange creates a change from an edit and the text it removed.
func NewChange(edit lineindex.Edit, oldText string, version uint64) Change {
	c := Change{
		Range:    Range{Start: edit.Start, End: edit.OldEnd},
		NewRange: Range{Start: edit.Start, End: edit.NewEnd()},
		OldText:  oldText,
		NewText:  edit.Text,
		Version:  version,
	}
	switch {
	case oldText == "":
		c.Type = ChangeInsert
	case edit.Text == "":
		c.Type = ChangeDelete
	default:
		c.Type = ChangeReplace
	}
	return c
}

// Edit returns the edit that produces the change.
func (c Change) Edit() lineindex.Edit {
	return lineindex.NewEdit(c.Range.Start, c.Range.End, c.NewText)
}

// Invert returns a change that undoes this change.
func (c Change) Invert() Change {
	inv := Change{
		Range:    c.NewRange,
		NewRange: c.Range,
		OldText:  c.NewText,
		NewText:  c.OldText,
		Version:  c.Version,
	}
	switch c.Type {
	case ChangeInsert:
		inv.Type = ChangeDelete
	case ChangeDelete:
		inv.Type = ChangeInsert
	default:
		inv.Type = ChangeReplace
	}
	return inv
}

// Delta returns the byte delta of this change.
func (c Change) Delta() int64 {
	return int64(len(c.NewText)) - int64(len(c.OldText))
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert %q at %d", abbreviate(c.NewText, 20), c.Range.Start)
	case ChangeDelete:
		return fmt.Sprintf("Delete %q at %v", abbreviate(c.OldText, 20), c.Range)
	default:
		return fmt.Sprintf("Replace %q with %q at %v", abbreviate(c.OldText, 10), abbreviate(c.NewText, 10), c.Range)
	}
}

func abbreviate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

// ChangeSet is an ordered list of changes.
type ChangeSet struct {
	Changes []Change
}

// Add appends a change.
func (cs *ChangeSet) Add(c Change) {
	cs.Changes = append(cs.Changes, c)
}

// Len returns the number of changes.
func (cs *ChangeSet) Len() int {
	return len(cs.Changes)
}

// IsEmpty returns true if there are no changes.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Changes) == 0
}

// TotalDelta returns the total byte delta of all changes.
func (cs *ChangeSet) TotalDelta() int64 {
	var delta int64
	for _, c := range cs.Changes {
		delta += c.Delta()
	}
	return delta
}

// Summary returns a human-readable summary of the changes.
func (cs *ChangeSet) Summary() string {
	if cs.IsEmpty() {
		return "no changes"
	}

	var inserts, deletes, replaces int
	var insertedBytes, deletedBytes int64
	for _, c := range cs.Changes {
		insertedBytes += int64(len(c.NewText))
		deletedBytes += int64(len(c.OldText))
		switch c.Type {
		case ChangeInsert:
			inserts++
		case ChangeDelete:
			deletes++
		case ChangeReplace:
			replaces++
		}
	}

	var parts []string
	if inserts > 0 {
		parts = append(parts, fmt.Sprintf("%d inserts", inserts))
	}
	if deletes > 0 {
		parts = append(parts, fmt.Sprintf("%d deletes", deletes))
	}
	if replaces > 0 {
		parts = append(parts, fmt.Sprintf("%d replaces", replaces))
	}
	return fmt.Sprintf("%s (+%d/-%d bytes)", strings.Join(parts, ", "), insertedBytes, deletedBytes)
}
