// Package pattern compiles and runs the regular expressions used by rule
// grammars.
//
// Patterns and subject text may be supplied in different encodings. Offsets
// in match results are always byte offsets in the subject's encoding. The
// engine is regexp2, which matches over runes, so subjects are decoded once
// per call and rune indexes mapped back to bytes.
package pattern
