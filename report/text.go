package report

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DescriptionLimit is the number of characters of a description printed
// for a featured book.
const DescriptionLimit = 200

// Sanitize replaces every rune the PDF core fonts cannot encode (cp1252)
// with '?'. It never fails.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			r = '?'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Truncate shortens s to limit characters and appends "..." when it cut
// anything.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
