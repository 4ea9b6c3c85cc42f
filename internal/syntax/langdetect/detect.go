// Package langdetect picks a language name for a document so the text store
// can choose a syntax backend. Names are lower case, e.g. "go" or "python";
// "text" means nothing was detected.
package langdetect

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Text is returned when no language is detected.
const Text = "text"

// classifierCandidates limits the content classifier to languages a backend
// can highlight.
var classifierCandidates = []string{
	"Go", "Python", "JavaScript", "TypeScript", "Rust", "Markdown",
	"Shell", "Ruby", "Java", "C", "C++", "JSON", "YAML", "TOML", "SQL",
}

// aliases maps enry names to the names used by the backends.
var aliases = map[string]string{
	"shell": "bash",
	"c++":   "cpp",
	"c#":    "csharp",
	"tsx":   "typescript",
}

// Detect returns the language of a document from its file name and content.
// The file name wins when it is unambiguous.
func Detect(filename string, content []byte) string {
	if filename != "" {
		if lang, safe := enry.GetLanguageByFilename(filename); safe {
			return normalize(lang)
		}
		if lang, safe := enry.GetLanguageByExtension(filename); safe {
			return normalize(lang)
		}
		if lang := preferred(enry.GetLanguagesByExtension(filename, content, nil)); lang != "" {
			return normalize(lang)
		}
	}
	if len(content) == 0 || enry.IsBinary(content) {
		return Text
	}
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}
	if filename != "" {
		if lang := enry.GetLanguage(filepath.Base(filename), content); lang != "" {
			return normalize(lang)
		}
	}
	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}
	return Text
}

// Extension returns a representative file extension for a language name, or
// "" when enry knows none.
func Extension(lang string) string {
	for _, name := range []string{lang, displayName(lang)} {
		if exts := enry.GetLanguageExtensions(name); len(exts) > 0 {
			return exts[0]
		}
	}
	return ""
}

// preferred returns the first candidate a backend can highlight.
func preferred(candidates []string) string {
	for _, c := range candidates {
		for _, known := range classifierCandidates {
			if c == known {
				return c
			}
		}
	}
	return ""
}

func normalize(lang string) string {
	lang = strings.ToLower(lang)
	if alias, ok := aliases[lang]; ok {
		return alias
	}
	return lang
}

// displayName returns enry's name for a lower-case language name.
func displayName(lang string) string {
	if name, ok := enry.GetLanguageByAlias(lang); ok {
		return name
	}
	return lang
}
