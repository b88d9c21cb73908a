package matching

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_LevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, LevenshteinDistance("engineer", "engineer"))
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 5, LevenshteinDistance("", "apple"))
	assert.Equal(t, 4, LevenshteinDistance("senior", "sr"))
}

func Test_LevenshteinRatio_IdenticalStrings_Returns100(t *testing.T) {
	assert.InDelta(t, 100, LevenshteinRatio("software engineer", "software engineer"), 0.01)
}

func Test_LevenshteinRatio_BothEmpty_ReturnsZero(t *testing.T) {
	assert.Zero(t, LevenshteinRatio("", ""))
}

func Test_TokenSortRatio_IgnoresWordOrder(t *testing.T) {
	ratio := TokenSortRatio("backend engineer", "engineer backend")
	assert.InDelta(t, 100, ratio, 0.01)
}

func Test_TokenSetRatio_ToleratesSenioritySynonyms(t *testing.T) {
	ratio := TokenSetRatio("senior software engineer", "sr software engineer")
	assert.GreaterOrEqual(t, ratio, 80.0)
}

func Test_TokenSetRatio_DisjointTokens_StaysLow(t *testing.T) {
	ratio := TokenSetRatio("accountant", "plumber")
	assert.Less(t, ratio, 40.0)
}

func Test_JaccardTokens(t *testing.T) {
	assert.InDelta(t, 100, JaccardTokens("build great software", "build great software"), 0.01)
	assert.Zero(t, JaccardTokens("", "some description"))
	assert.Zero(t, JaccardTokens("", ""))

	// {a b c} vs {b c d}: 2 shared of 4 total
	assert.InDelta(t, 50, JaccardTokens("a b c", "b c d"), 0.01)
}
