// Package syntax defines the boundary between the text store and the parsers
// that produce capture spans for highlighting.
//
// A Backend parses the document, incrementally when it can, and reports the
// byte ranges whose captures may have changed. It then answers capture
// queries restricted to those ranges. Three backends live in subpackages:
//
//   - treesitter: incremental parsing with gotreesitter grammars
//   - chroma: whole-document lexing with chroma lexers
//   - rules: line-scoped YAML rule grammars over the pattern matcher
//
// Offsets are byte offsets into the UTF-8 text.
package syntax
