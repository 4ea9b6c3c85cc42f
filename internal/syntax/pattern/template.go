package pattern

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// caseModifier changes the case of the group text that follows it.
type caseModifier byte

const (
	upperNext caseModifier = 'u'
	upperAll  caseModifier = 'U'
	lowerNext caseModifier = 'l'
	lowerAll  caseModifier = 'L'
)

type templatePart struct {
	text      string
	group     int // -1 for literal text
	modifiers []caseModifier
}

// Template is a parsed replacement string. $N inserts group N of a match.
// \n, \r and \t are control characters, \\ and \$ are literal, and \u, \U,
// \l and \L change the case of the group that follows them: one letter per
// \u or \l, the rest of the group for \U and \L. Case modifiers are not
// applied to $0.
type Template struct {
	parts []templatePart
}

// ParseTemplate parses a replacement string. Every string is a valid
// template; sequences that are not escapes are kept as written.
func ParseTemplate(s string) Template {
	var (
		parts []templatePart
		buf   strings.Builder
		mods  []caseModifier
	)
	flushModifiers := func() {
		for _, m := range mods {
			buf.WriteByte('\\')
			buf.WriteByte(byte(m))
		}
		mods = nil
	}
	flushText := func() {
		if buf.Len() > 0 {
			parts = append(parts, templatePart{text: buf.String(), group: -1})
			buf.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			switch n := s[i]; n {
			case '\\':
				buf.WriteByte('\\')
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case byte(upperNext), byte(upperAll), byte(lowerNext), byte(lowerAll):
				mods = append(mods, caseModifier(n))
			case '$':
				flushModifiers()
				buf.WriteByte('$')
			default:
				flushModifiers()
				buf.WriteByte('\\')
				buf.WriteByte(n)
			}
		case c == '$' && i+1 < len(s) && isDigit(s[i+1]):
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			group, err := strconv.Atoi(s[i+1 : j])
			if err != nil {
				flushModifiers()
				buf.WriteString(s[i:j])
			} else {
				flushText()
				parts = append(parts, templatePart{group: group, modifiers: mods})
				mods = nil
			}
			i = j - 1
		default:
			flushModifiers()
			buf.WriteByte(c)
		}
	}
	flushText()
	return Template{parts: parts}
}

// HasGroups reports whether the template refers to any match group.
func (t Template) HasGroups() bool {
	for _, p := range t.parts {
		if p.group >= 0 {
			return true
		}
	}
	return false
}

// Expand builds the replacement for m, a match in subject. A group the
// pattern does not define is written back as $N; an unmatched group is
// empty.
func (t Template) Expand(m MatchResult, subject string) string {
	var b strings.Builder
	for _, p := range t.parts {
		switch {
		case p.group < 0:
			b.WriteString(p.text)
		case p.group >= len(m.Groups):
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(p.group))
		default:
			g := m.Groups[p.group]
			if !g.Matched {
				continue
			}
			text := subject[g.Start:g.End]
			if p.group > 0 {
				text = applyModifiers(p.modifiers, text)
			}
			b.WriteString(text)
		}
	}
	return b.String()
}

// applyModifiers applies mods to text in order. \u and \l consume one
// character; \U and \L consume the rest.
func applyModifiers(mods []caseModifier, text string) string {
	if len(mods) == 0 {
		return text
	}
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)

	var b strings.Builder
	for _, m := range mods {
		if text == "" {
			break
		}
		_, size := utf8.DecodeRuneInString(text)
		switch m {
		case upperNext:
			b.WriteString(upper.String(text[:size]))
			text = text[size:]
		case lowerNext:
			b.WriteString(lower.String(text[:size]))
			text = text[size:]
		case upperAll:
			b.WriteString(upper.String(text))
			text = ""
		case lowerAll:
			b.WriteString(lower.String(text))
			text = ""
		}
	}
	b.WriteString(text)
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
