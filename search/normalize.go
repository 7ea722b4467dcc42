package search

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonKeyChars = regexp.MustCompile(`[^a-z0-9\s]+`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeName turns a company name into its compact search key.
// A nil name yields "".
func NormalizeName(raw *string) string {
	if raw == nil {
		return ""
	}
	return NormalizeCompanyName(*raw)
}

// NormalizeCompanyName canonicalizes name in a single pass:
//
//	"Apple Inc."        -> "apple"
//	"Johnson & Johnson" -> "johnsonjohnson"
//
// The result is not a fixpoint: removing the spaces can glue fragments into
// a vocabulary word that a second call would then strip.
func NormalizeCompanyName(name string) string {
	if name == "" {
		return ""
	}

	s := strings.ToLower(norm.NFC.String(name))
	s = html.UnescapeString(s)
	s = stripMarks(s)
	s = strings.ReplaceAll(s, "&", "")
	s = nonKeyChars.ReplaceAllString(s, "")
	s = removalPattern.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.ReplaceAll(s, " ", "")
}

// stripMarks decomposes s and drops combining marks ("é" -> "e").
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
