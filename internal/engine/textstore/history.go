package textstore

import (
	"sync"
	"time"

	"github.com/dshills/textstore/internal/engine/tracking"
)

// historyEntry is one undoable step. Changes are kept in the order they were
// applied.
type historyEntry struct {
	changes   []tracking.Change
	timestamp time.Time
}

// history manages undo/redo state for a store.
type history struct {
	mu sync.Mutex

	undoStack []*historyEntry
	redoStack []*historyEntry

	maxEntries int
}

func newHistory(maxEntries int) *history {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxUndoEntries
	}
	return &history{maxEntries: maxEntries}
}

// push records applied changes and clears the redo stack.
func (h *history) push(changes []tracking.Change) {
	if len(changes) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = append(h.undoStack, &historyEntry{
		changes:   changes,
		timestamp: time.Now(),
	})
	h.redoStack = nil

	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

func (h *history) popUndo() (*historyEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return nil, false
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	return e, true
}

func (h *history) popRedo() (*historyEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redoStack) == 0 {
		return nil, false
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	return e, true
}

func (h *history) pushUndo(e *historyEntry) {
	h.mu.Lock()
	h.undoStack = append(h.undoStack, e)
	h.mu.Unlock()
}

func (h *history) pushRedo(e *historyEntry) {
	h.mu.Lock()
	h.redoStack = append(h.redoStack, e)
	h.mu.Unlock()
}

func (h *history) counts() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack), len(h.redoStack)
}

func (h *history) clear() {
	h.mu.Lock()
	h.undoStack = nil
	h.redoStack = nil
	h.mu.Unlock()
}
