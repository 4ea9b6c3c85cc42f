package pattern

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies how pattern or subject bytes encode characters.
type Encoding uint8

const (
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
	Latin1
	ASCII
)

var encodingNames = map[Encoding]string{
	UTF8:    "utf-8",
	UTF16LE: "utf-16le",
	UTF16BE: "utf-16be",
	Latin1:  "latin1",
	ASCII:   "ascii",
}

func (e Encoding) String() string {
	if name, ok := encodingNames[e]; ok {
		return name
	}
	return fmt.Sprintf("encoding(%d)", e)
}

// ParseEncoding returns the encoding with the given name.
func ParseEncoding(name string) (Encoding, error) {
	for enc, n := range encodingNames {
		if n == name {
			return enc, nil
		}
	}
	return 0, fmt.Errorf("unknown encoding %q", name)
}

func (e Encoding) valid() bool {
	_, ok := encodingNames[e]
	return ok
}

func (e Encoding) unicode() bool {
	return e == UTF8 || e == UTF16LE || e == UTF16BE
}

// Compatible reports whether a pattern in encoding p can run against
// subjects in encoding t. Any encoding pairs with itself, ASCII patterns run
// against every subject, and the Unicode encodings convert freely.
func Compatible(p, t Encoding) bool {
	if !p.valid() || !t.valid() {
		return false
	}
	return p == t || p == ASCII || (p.unicode() && t.unicode())
}

// codec returns the x/text encoding used to turn pattern bytes into UTF-8.
func (e Encoding) codec() encoding.Encoding {
	switch e {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case Latin1:
		return charmap.ISO8859_1
	default:
		return encoding.Nop
	}
}

// decodePattern converts pattern bytes to a UTF-8 string.
func decodePattern(p []byte, enc Encoding) (string, error) {
	if enc == UTF8 || enc == ASCII {
		if !utf8.Valid(p) {
			return "", fmt.Errorf("pattern is not valid %s", enc)
		}
		return string(p), nil
	}
	out, err := enc.codec().NewDecoder().Bytes(p)
	if err != nil {
		return "", fmt.Errorf("decode %s pattern: %w", enc, err)
	}
	return string(out), nil
}

// EncodeString converts UTF-8 text into enc. Characters enc cannot
// represent produce an error.
func EncodeString(s string, enc Encoding) ([]byte, error) {
	if enc == UTF8 {
		return []byte(s), nil
	}
	if enc == ASCII {
		for i := 0; i < len(s); i++ {
			if s[i] >= utf8.RuneSelf {
				return nil, fmt.Errorf("byte %d is not ascii", i)
			}
		}
		return []byte(s), nil
	}
	return enc.codec().NewEncoder().Bytes([]byte(s))
}

// decodeSubject decodes text into runes and records the byte offset of each
// rune in the original encoding. offsets has one extra entry holding
// len(text).
func decodeSubject(text []byte, enc Encoding) (runes []rune, offsets []int) {
	runes = make([]rune, 0, len(text))
	offsets = make([]int, 0, len(text)+1)

	switch enc {
	case UTF16LE, UTF16BE:
		unit := func(i int) uint16 {
			if enc == UTF16LE {
				return uint16(text[i]) | uint16(text[i+1])<<8
			}
			return uint16(text[i])<<8 | uint16(text[i+1])
		}
		i := 0
		for ; i+1 < len(text); i += 2 {
			offsets = append(offsets, i)
			u := unit(i)
			if utf16.IsSurrogate(rune(u)) && i+3 < len(text) {
				if r := utf16.DecodeRune(rune(u), rune(unit(i+2))); r != utf8.RuneError {
					runes = append(runes, r)
					i += 2
					continue
				}
			}
			runes = append(runes, rune(u))
		}
		if i < len(text) {
			// Odd trailing byte.
			offsets = append(offsets, i)
			runes = append(runes, utf8.RuneError)
		}
	case Latin1:
		for i, b := range text {
			offsets = append(offsets, i)
			runes = append(runes, charmap.ISO8859_1.DecodeByte(b))
		}
	case ASCII:
		for i, b := range text {
			offsets = append(offsets, i)
			if b >= utf8.RuneSelf {
				runes = append(runes, utf8.RuneError)
			} else {
				runes = append(runes, rune(b))
			}
		}
	default:
		for i := 0; i < len(text); {
			r, size := utf8.DecodeRune(text[i:])
			offsets = append(offsets, i)
			runes = append(runes, r)
			i += size
		}
	}
	offsets = append(offsets, len(text))
	return runes, offsets
}
