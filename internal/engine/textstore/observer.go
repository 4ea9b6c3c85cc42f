package textstore

import (
	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/renderer/highlight"
)

// Observer receives store notifications. Every field is optional.
//
// For each edit the store calls LineRemoved or LineInserted for every
// affected line, then HighlightRangesChanged with the ranges of the
// rehighlighted region, then EditingFinished. Callbacks run synchronously on
// the editing goroutine, except HighlightRangesChanged under deferred
// highlighting, which runs on the worker. Queries made there see the latest
// text, which may already be newer than the ranges. Editing the store from a
// callback fails with ErrConcurrentEditRejected.
type Observer struct {
	// LineRemoved reports a removed line, numbered before its removal.
	// Removals arrive in descending order.
	LineRemoved func(line uint32)

	// LineInserted reports an inserted line. Insertions arrive in ascending
	// order.
	LineInserted func(line uint32)

	HighlightRangesChanged func(ranges []highlight.HighlightRange)

	EditingFinished func()
}

type observerEntry struct {
	id  int
	obs Observer
}

// AddObserver registers obs and returns a function that removes it.
// Observers are called in registration order.
func (s *Store) AddObserver(obs Observer) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, observerEntry{id: id, obs: obs})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.observers {
			if e.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) observerList() []Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Observer, len(s.observers))
	for i, e := range s.observers {
		out[i] = e.obs
	}
	return out
}

func (s *Store) publishLines(lines lineindex.LineChangeSet) {
	if len(lines.Removed) == 0 && len(lines.Inserted) == 0 {
		return
	}
	for _, obs := range s.observerList() {
		if obs.LineRemoved != nil {
			for _, l := range lines.Removed {
				obs.LineRemoved(l)
			}
		}
		if obs.LineInserted != nil {
			for _, l := range lines.Inserted {
				obs.LineInserted(l)
			}
		}
	}
}

func (s *Store) publishHighlights(ranges []highlight.HighlightRange) {
	for _, obs := range s.observerList() {
		if obs.HighlightRangesChanged != nil {
			obs.HighlightRangesChanged(ranges)
		}
	}
}

func (s *Store) publishFinished() {
	for _, obs := range s.observerList() {
		if obs.EditingFinished != nil {
			obs.EditingFinished()
		}
	}
}
