package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/textstore/internal/syntax/pattern"
)

// stateNormal is the lexer state outside any block. State i+1 means inside
// Blocks[i].
const stateNormal = 0

// span is a capture within one line, in bytes from the line start.
type span struct {
	start, end int
	capture    string
}

// lineState is the lexed form of one line.
type lineState struct {
	startState int
	endState   int
	spans      []span
}

// tokenizeLine lexes one line without its terminator. prevState is the
// state left by the previous line.
func (g *Grammar) tokenizeLine(line string, prevState int) lineState {
	ls := lineState{startState: prevState}
	pos := 0

	if prevState != stateNormal && prevState <= len(g.Blocks) {
		b := g.Blocks[prevState-1]
		idx := strings.Index(line, b.End)
		if idx < 0 {
			if len(line) > 0 {
				ls.spans = append(ls.spans, span{0, len(line), b.Capture})
			}
			ls.endState = prevState
			return ls
		}
		pos = idx + len(b.End)
		ls.spans = append(ls.spans, span{0, pos, b.Capture})
	}

	var subject *pattern.Subject
	if len(g.Rules) > 0 {
		subject = pattern.NewSubject(line)
	}
	next := make([]pattern.MatchResult, len(g.Rules))
	have := make([]bool, len(g.Rules))
	done := make([]bool, len(g.Rules))

	for pos < len(line) {
		bestStart := len(line) + 1
		bestBlock, bestRule := -1, -1

		for i, b := range g.Blocks {
			if idx := strings.Index(line[pos:], b.Start); idx >= 0 && pos+idx < bestStart {
				bestStart, bestBlock = pos+idx, i
			}
		}
		for i := range g.Rules {
			if done[i] {
				continue
			}
			if !have[i] || next[i].Start < pos {
				res, ok, err := g.Rules[i].matcher.MatchSubject(subject, pos)
				if err != nil || !ok {
					done[i] = true
					continue
				}
				next[i], have[i] = res, true
			}
			if next[i].Start < bestStart {
				bestStart, bestBlock, bestRule = next[i].Start, -1, i
			}
		}
		if bestBlock < 0 && bestRule < 0 {
			break
		}

		ls.spans = g.appendWords(ls.spans, line, pos, bestStart)

		if bestBlock >= 0 {
			b := g.Blocks[bestBlock]
			after := bestStart + len(b.Start)
			idx := strings.Index(line[after:], b.End)
			if idx < 0 {
				ls.spans = append(ls.spans, span{bestStart, len(line), b.Capture})
				ls.endState = bestBlock + 1
				return ls
			}
			pos = after + idx + len(b.End)
			ls.spans = append(ls.spans, span{bestStart, pos, b.Capture})
			continue
		}

		r := g.Rules[bestRule]
		m := next[bestRule]
		start, end := m.Start, m.End
		if r.Group > 0 && r.Group < len(m.Groups) {
			grp := m.Groups[r.Group]
			start, end = grp.Start, grp.End
			if !grp.Matched {
				start, end = 0, 0
			}
		}
		if end > start {
			ls.spans = append(ls.spans, span{start, end, r.Capture})
		}
		if m.End > bestStart {
			pos = m.End
		} else {
			_, size := utf8.DecodeRuneInString(line[bestStart:])
			pos = bestStart + max(size, 1)
		}
	}

	ls.spans = g.appendWords(ls.spans, line, pos, len(line))
	ls.endState = stateNormal
	return ls
}

// appendWords tags keywords, and identifiers when the grammar asks for them,
// in line[from:to].
func (g *Grammar) appendWords(spans []span, line string, from, to int) []span {
	if len(g.words) == 0 && g.Identifier == "" {
		return spans
	}
	for i := from; i < to; {
		r, size := utf8.DecodeRuneInString(line[i:to])
		if !unicode.IsLetter(r) && r != '_' {
			i += size
			continue
		}
		start := i
		for i < to {
			r, size = utf8.DecodeRuneInString(line[i:to])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				break
			}
			i += size
		}
		capture, ok := g.words[line[start:i]]
		if !ok {
			capture = g.Identifier
		}
		if capture != "" {
			spans = append(spans, span{start, i, capture})
		}
	}
	return spans
}
