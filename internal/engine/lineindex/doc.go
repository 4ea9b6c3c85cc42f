// Package lineindex maps between flat byte offsets and (line, column)
// positions and keeps that mapping current as the text is edited.
//
// The index stores one Record per line: the byte length of the line content
// and the length of its terminator ("\n", "\r\n" or a lone "\r"). Records live
// in a persistent B+ tree whose internal nodes carry per-child summaries of
// line count and byte length, so both directions of the mapping are a single
// O(log n) descent:
//
//	idx := lineindex.Build("a\nbb\nccc")
//	idx.LineCount()            // 3
//	idx.OffsetOfLine(1)        // 2
//	idx.PositionForOffset(7)   // (2:2)
//
// Edits are applied with ApplyEdit. Only the lines touched by the edit are
// rescanned and replaced; the rest of the tree is shared with the previous
// version. Because nodes are never mutated after construction, Snapshot is
// O(1) and a failed ApplyEdit leaves the index exactly as it was.
//
// Columns are measured in bytes, the code unit of Go strings. An Index is not
// safe for concurrent mutation; snapshots may be read from any goroutine.
package lineindex
