package search

import (
	"regexp"
	"sort"
	"strings"
)

// Words dropped from company names before they become search keys. Entries
// may span several tokens; they are matched as whole words.
var (
	legalSuffixes = []string{
		"incorporated", "inc", "corporation", "corp", "company", "co",
		"limited", "ltd", "llc", "llp", "lp", "plc", "gmbh", "ag", "sa",
		"nv", "bv", "se", "spa", "srl", "ab", "asa", "oyj", "kk", "pte",
		"pty", "pty ltd", "co ltd",
	}
	corporateStructure = []string{
		"holdings", "holdings inc", "group", "trust", "capital", "partners",
		"ventures", "enterprises", "international", "global", "worldwide",
		"industries", "associates", "companies",
	}
	transactionWords = []string{
		"acquisition", "acquisitions", "acquisition corp", "merger",
		"merger sub", "spac", "blank check",
	}
	industryWords = []string{
		"technologies", "technology", "pharmaceutical", "pharmaceuticals",
		"therapeutics", "biosciences", "biotherapeutics", "bancorp",
		"bancshares", "financial", "systems", "solutions", "software",
		"semiconductor", "semiconductors", "communications", "realty",
		"properties",
	}
	stopwords = []string{
		"the", "of", "for", "by", "in", "and",
	}
	abbreviations = []string{
		"etf", "reit", "adr", "ads", "intl", "mfg", "hldgs", "grp", "svcs",
		"fund", "units", "unit", "warrants", "warrant", "wts", "rights",
		"common stock", "ordinary shares", "depositary shares",
		"american depositary shares", "sponsored adr", "class a", "class b",
		"class c",
	}
)

// removalVocabulary is the deduplicated union of the lists above, longest
// phrase first. It is built once and never mutated.
var removalVocabulary = buildVocabulary(
	legalSuffixes,
	corporateStructure,
	transactionWords,
	industryWords,
	stopwords,
	abbreviations,
)

// removalPattern matches any vocabulary phrase as a whole word. RE2 prefers
// the leftmost alternative, so longer phrases are listed first.
var removalPattern = compileVocabulary(removalVocabulary)

func buildVocabulary(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, list := range lists {
		for _, w := range list {
			w = strings.Join(strings.Fields(strings.ToLower(w)), " ")
			if w == "" {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
		}
	}

	sort.SliceStable(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return words
}

func compileVocabulary(words []string) *regexp.Regexp {
	alts := make([]string, len(words))
	for i, w := range words {
		tokens := strings.Fields(w)
		for j, t := range tokens {
			tokens[j] = regexp.QuoteMeta(t)
		}
		alts[i] = strings.Join(tokens, `\s+`)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// RemovalVocabulary returns a copy of the vocabulary, longest phrase first.
func RemovalVocabulary() []string {
	out := make([]string, len(removalVocabulary))
	copy(out, removalVocabulary)
	return out
}
