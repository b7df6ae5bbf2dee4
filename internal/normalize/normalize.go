// Package normalize canonicalizes founder names and identifiers into forms
// that can be compared directly.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// linkedInSlugRe captures the profile slug from a ".../in/<slug>" path.
var linkedInSlugRe = regexp.MustCompile(`/in/([^/?#]+)`)

// Name canonicalizes a person name:
//  1. Folding accents (é -> e)
//  2. Lowercasing
//  3. Dropping every rune that is not a letter or whitespace
//  4. Collapsing whitespace runs into single spaces and trimming
//
// Name never fails; an empty input yields "".
func Name(name string) string {
	if name == "" {
		return ""
	}

	// Chains hold internal buffers, so each call builds its own.
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// LinkedIn reduces a profile URL to its "/in/<slug>" slug. Values without a
// profile path are returned lowercased and trimmed so that exact string
// comparison still works.
func LinkedIn(rawURL string) string {
	v := strings.ToLower(strings.TrimSpace(rawURL))
	if m := linkedInSlugRe.FindStringSubmatch(v); m != nil {
		return m[1]
	}
	return v
}

// Email lowercases and trims an email address.
func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FirstToken returns the first space-separated token of a normalized name.
func FirstToken(normalized string) string {
	first, _, _ := strings.Cut(normalized, " ")
	return first
}

// LastToken returns the last space-separated token of a normalized name.
func LastToken(normalized string) string {
	if i := strings.LastIndexByte(normalized, ' '); i >= 0 {
		return normalized[i+1:]
	}
	return normalized
}
