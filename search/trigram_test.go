package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrigrams(t *testing.T) {
	got := Trigrams("Cat")
	assert.Len(t, got, 4)
	for _, g := range []string{"  c", " ca", "cat", "at "} {
		assert.Contains(t, got, g)
	}

	assert.Empty(t, Trigrams("!!"))
	assert.Len(t, Trigrams("a b"), 4)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("apple", "APPLE"))
	assert.Equal(t, 0.0, Similarity("", "apple"))
	assert.InDelta(t, 1.0/9.0, Similarity("apple", "aap"), 1e-9)
	assert.InDelta(t, Similarity("msft", "msfx"), Similarity("msfx", "msft"), 1e-12)
}

func TestFieldScore(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		pattern string
		want    float64
	}{
		{"exact", "AAPL", "aapl", ExactScore},
		{"prefix", "AAPL", "aap", PrefixScore},
		{"wildcard prefix", "appleinc", "apple%inc%", PrefixScore},
		{"wildcard gap", "bankofamerica", "bank%america", PrefixScore},
		{"literal punctuation", "%%x", "%%", PrefixScore},
		{"under threshold", "apple", "aap", 0},
		{"no overlap", "msft", "zzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldScore(tt.field, tt.pattern))
		})
	}
}

func TestFieldScore_Similarity(t *testing.T) {
	got := FieldScore("microsoft", "microsft")
	assert.GreaterOrEqual(t, got, MatchThreshold)
	assert.Less(t, got, PrefixScore)
	assert.Equal(t, Similarity("microsoft", "microsft"), got)
}

func TestLiteralPrefix(t *testing.T) {
	assert.Equal(t, "apple", literalPrefix("apple%inc%"))
	assert.Equal(t, "aapl", literalPrefix("aapl"))
	assert.Equal(t, "%%", literalPrefix("%%"))
	assert.Equal(t, "", literalPrefix("%msft"))
}
