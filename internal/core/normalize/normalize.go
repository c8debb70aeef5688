// Package normalize cleans clipboard text before classification
// Pipeline order
// 1 Fold CRLF and lone CR line endings to LF
// 2 Remove control and format runes (NUL, DEL, C1, BOM, zero-width, bidi marks) and invalid UTF-8
// 3 Trim leading and trailing whitespace
//
// Visible characters are never rewritten, tokens such as JWTs or hashes stay byte-identical
package normalize

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// clipboards on Windows and classic Mac hand over \r\n and \r
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// pool of strip transformers
var stripPool = sync.Pool{
	New: func() any {
		return runes.Remove(runes.Predicate(Strippable))
	},
}

// Strippable reports whether r is dropped from a payload
// tab and line feed are layout and survive, invalid bytes arrive as utf8.RuneError
func Strippable(r rune) bool {
	switch r {
	case '\t', '\n':
		return false
	case utf8.RuneError:
		return true
	}
	return unicode.IsControl(r) || unicode.Is(unicode.Cf, r)
}

// Clean returns the classifiable form of a clipboard payload
func Clean(s string) string {
	if s == "" {
		return ""
	}
	if strings.IndexByte(s, '\r') >= 0 {
		s = lineEndings.Replace(s)
	}
	if needsStrip(s) {
		tr := stripPool.Get().(transform.Transformer)
		out, _, err := transform.String(tr, s)
		tr.Reset()
		stripPool.Put(tr)
		if err == nil {
			s = out
		}
	}
	return strings.TrimSpace(s)
}

// IsBlank reports whether s has nothing left after Clean
func IsBlank(s string) bool { return Clean(s) == "" }

// needsStrip skips the transformer for plain printable text
func needsStrip(s string) bool {
	for i := 0; i < len(s); {
		if b := s[i]; b >= 0x20 && b < 0x7F {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if Strippable(r) {
			return true
		}
		i += size
	}
	return false
}
