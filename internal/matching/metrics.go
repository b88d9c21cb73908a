package matching

import (
	"strings"

	"github.com/samber/lo"
)

// LevenshteinDistance is the classic two-row DP edit distance over runes.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// LevenshteinRatio maps edit distance onto 0..100. Two empty strings score 0:
// a field missing on both sides is no evidence of a match.
func LevenshteinRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 0
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	return 100 * (1 - float64(LevenshteinDistance(a, b))/float64(longest))
}

// TokenSortRatio compares the alphabetically sorted words of both strings,
// making it order-insensitive ("Engineer, Backend" vs "Backend Engineer").
func TokenSortRatio(a, b string) float64 {
	return LevenshteinRatio(joinTokens(Tokens(a)), joinTokens(Tokens(b)))
}

// TokenSetRatio scores the shared word set against each full set, so a title
// that is a superset of the other ("Senior Software Engineer" vs
// "Sr Software Engineer") is not punished for every extra word.
func TokenSetRatio(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	shared := lo.Intersect(ta, tb)
	if len(shared) == 0 {
		return TokenSortRatio(a, b)
	}

	base := joinTokens(shared)
	full1 := joinTokens(append(shared, lo.Without(ta, shared...)...))
	full2 := joinTokens(append(shared, lo.Without(tb, shared...)...))

	return max(
		LevenshteinRatio(base, full1),
		LevenshteinRatio(base, full2),
		LevenshteinRatio(full1, full2),
	)
}

// JaccardTokens is word-set overlap on 0..100, used for free-text fields.
func JaccardTokens(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	intersection := len(lo.Intersect(ta, tb))
	union := len(ta) + len(tb) - intersection
	return 100 * float64(intersection) / float64(union)
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}

func min3(a, b, c int) int {
	return min(a, min(b, c))
}
