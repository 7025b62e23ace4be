package hierarchy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts s into a filesystem and URL safe path segment:
// diacritics are folded, letters lowered, every run of other characters
// becomes one hyphen and leading or trailing hyphens are trimmed.
// The result is empty when s has no ASCII letters or digits.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// SlugifyPath slugifies every segment of a slash separated path and drops
// segments that become empty.
func SlugifyPath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	out := parts[:0]
	for _, part := range parts {
		if s := Slugify(part); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "/")
}
