package search

import (
	"strings"
	"unicode"
)

// Field scores assigned before falling back to trigram similarity.
const (
	ExactScore     = 1.0
	PrefixScore    = 0.95
	MatchThreshold = 0.2
)

// Trigrams returns the trigram set of s the way pg_trgm builds it: the
// lowercased input is split into alphanumeric words, each word is padded
// with two leading blanks and one trailing blank, and every three-rune
// window is collected once.
func Trigrams(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]struct{})
	for _, w := range words {
		rs := []rune("  " + w + " ")
		for i := 0; i+3 <= len(rs); i++ {
			set[string(rs[i:i+3])] = struct{}{}
		}
	}
	return set
}

// Similarity is the Jaccard index of the trigram sets of a and b, in [0,1].
func Similarity(a, b string) float64 {
	ta, tb := Trigrams(a), Trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	common := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			common++
		}
	}
	return float64(common) / float64(len(ta)+len(tb)-common)
}

// FieldScore rates how well field matches pattern:
// exact (case-insensitive) 1.0, prefix 0.95, otherwise trigram similarity,
// and 0 when the similarity is under MatchThreshold.
func FieldScore(field, pattern string) float64 {
	f, p := strings.ToLower(field), strings.ToLower(pattern)
	if f == p {
		return ExactScore
	}
	if hasPatternPrefix(f, p) {
		return PrefixScore
	}
	if sim := Similarity(f, p); sim >= MatchThreshold {
		return sim
	}
	return 0
}

// hasPatternPrefix reports whether field is matched by pattern followed by
// an implicit trailing wildcard. Wildcards only count when the pattern has
// something to anchor on, so "%%" is taken literally.
func hasPatternPrefix(field, pattern string) bool {
	if pattern == "" {
		return false
	}
	if !alphanumeric.MatchString(pattern) {
		return strings.HasPrefix(field, pattern)
	}

	segments := strings.Split(pattern, Wildcard)
	if !strings.HasPrefix(field, segments[0]) {
		return false
	}
	rest := field[len(segments[0]):]
	for _, seg := range segments[1:] {
		if seg == "" {
			continue
		}
		i := strings.Index(rest, seg)
		if i < 0 {
			return false
		}
		rest = rest[i+len(seg):]
	}
	return true
}

// literalPrefix is the part of pattern before its first wildcard.
func literalPrefix(pattern string) string {
	if i := strings.Index(pattern, Wildcard); i >= 0 && alphanumeric.MatchString(pattern) {
		return pattern[:i]
	}
	return pattern
}
