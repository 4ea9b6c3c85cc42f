// Package textstore is the storage facade of a highlighted document.
//
// A Store owns the text (a rope), its line index and the syntax tree built
// by a parser backend, and keeps a list of styled highlight ranges in sync
// with the text. Every edit runs one cycle:
//
//	Clean -> Editing -> Reparsing -> Rehighlighting -> Clean
//
// Editing applies the edit to the rope and the line index and packages the
// parser delta. Reparsing hands the delta and the previous tree to the
// parser, which reports the byte ranges whose captures may have changed.
// Rehighlighting queries captures for those ranges only and maps them to
// positioned, styled ranges. Highlights outside the changed ranges are kept
// and shifted by the edit.
//
// Observers are told about removed and inserted lines first, then about the
// new highlight ranges, then that the edit finished:
//
//	s, _ := textstore.New("a\nbb\nccc", textstore.WithSelection(backend.Request{Filename: "x.go"}))
//	remove := s.AddObserver(textstore.Observer{
//		LineInserted: func(line uint32) { ... },
//	})
//	defer remove()
//	s.Insert(ctx, 4, "\n")
//
// With WithDeferredHighlighting the Reparsing and Rehighlighting phases run
// on a background worker. Position queries are exact as soon as an edit
// returns; highlights catch up when the worker publishes them, and a newer
// edit cancels the pass in flight.
package textstore
