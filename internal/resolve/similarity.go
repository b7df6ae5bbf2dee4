// Package resolve decides whether an incoming founder record refers to a
// founder already in the store, and what to do about it.
package resolve

import (
	"math"

	"github.com/sells-group/founder-resolve/internal/normalize"
)

// NameSimilarity scores two names from 0 to 100 using the Levenshtein edit
// distance between their normalized forms, relative to the longer one.
// Identical normalized forms (including two empty names) score 100.
func NameSimilarity(a, b string) int {
	na, nb := normalize.Name(a), normalize.Name(b)
	if na == nb {
		return 100
	}

	ra, rb := []rune(na), []rune(nb)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 100
	}

	d := levenshtein(ra, rb)
	return int(math.Round(float64(maxLen-d) / float64(maxLen) * 100))
}

// Levenshtein returns the edit distance between a and b, counting runes.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

// levenshtein fills the full (len(a)+1) x (len(b)+1) table with unit costs
// for insertion, deletion and substitution.
func levenshtein(a, b []rune) int {
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
		dp[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		dp[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			dp[i][j] = min(
				dp[i-1][j]+1,
				dp[i][j-1]+1,
				dp[i-1][j-1]+cost,
			)
		}
	}
	return dp[len(a)][len(b)]
}
