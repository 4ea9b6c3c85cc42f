// Package lsp exports text store positions in Language Server Protocol form.
//
// LSP positions count characters in UTF-16 code units while the store works
// in byte offsets. Converter bridges the two over any Document, which
// *textstore.Store satisfies:
//
//	conv := lsp.Converter{Store: store}
//	pos, err := conv.Position(42)
//
// Highlight ranges are converted with HighlightRange, and applied edits are
// described as incremental didChange events with ChangeEvent.
package lsp
