// Package rope provides the immutable text container behind a text store.
//
// A rope is a B+ tree whose leaves hold bounded text chunks and whose internal
// nodes store per-child summaries (byte count and UTF-16 code unit count).
// Edits return new ropes that share unchanged subtrees with the original, so
// keeping the pre-edit text around for a reparse costs nothing.
//
// The rope knows nothing about lines. Line structure lives in the line index,
// which reads the text through the Len and Slice methods.
//
//	r := rope.FromString("hello world")
//	r = r.Insert(5, ",")           // "hello, world"
//	r = r.Delete(0, 7)             // "world"
//	text := r.String()             // "world"
//
// Ropes are safe for concurrent reads.
package rope
