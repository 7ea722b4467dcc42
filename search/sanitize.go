package search

import "regexp"

// Wildcard is the pattern marker understood by every Matcher.
const Wildcard = "%"

var (
	alphanumeric    = regexp.MustCompile(`[a-z0-9]`)
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	wildcardRun     = regexp.MustCompile(`%+`)
)

// SanitizeQuery turns a lowercased query into a match pattern where every run
// of separators becomes a single wildcard ("apple inc." -> "apple%inc%").
// Input without any [a-z0-9] is returned as is so that punctuation never
// becomes a match-everything pattern.
func SanitizeQuery(q *string) *string {
	if q == nil {
		return nil
	}
	if !alphanumeric.MatchString(*q) {
		out := *q
		return &out
	}

	out := nonAlphanumeric.ReplaceAllString(*q, Wildcard)
	out = wildcardRun.ReplaceAllString(out, Wildcard)
	return &out
}
