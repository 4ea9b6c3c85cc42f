// Package tracking translates text edits into the deltas an incremental
// parser consumes and keeps byte ranges valid across edits.
//
// # Parser deltas
//
// An incremental parser needs every edit described twice: as byte offsets and
// as (line, column) points, each for the start, the old end and the new end of
// the edited region. The start and old end points must be read from the line
// index as it was before the edit, the new end point from the index after it.
// Reading all three from one state gives wrong points for edits that add or
// remove line terminators.
//
// The sequencing is explicit in the API:
//
//	pending, err := tracking.Prepare(edit, idx)   // pre-edit index
//	...
//	cs, err := idx.ApplyEdit(edit, text)
//	...
//	delta, err := pending.Complete(idx)           // post-edit index
//
// Apply performs the three steps against a single index.
//
// # Shifting ranges
//
// ParserDelta.ShiftOffset and ParserDelta.ShiftRange map positions computed
// before an edit into the post-edit text. Ranges that intersect the edited
// region cannot be mapped and are reported as such, so callers can drop them.
//
// # Changes
//
// Change and ChangeSet record applied edits with the removed and inserted
// text, for logging and replay.
package tracking
