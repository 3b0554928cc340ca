// Package similarity scores how alike two strings are using Levenshtein
// edit distance.
//
// All comparisons are case-insensitive under Unicode case folding and work
// on runes, not bytes. Score is normalized to [0,1] by the longer string's
// length, so it never errors and never leaves that interval.
package similarity

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s used for case-insensitive
// comparison. A fresh Caser is created per call: Casers are stateful and
// must not be shared between goroutines.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Levenshtein returns the case-insensitive edit distance between a and b:
// the minimum number of single-rune insertions, deletions and substitutions
// turning one into the other.
func Levenshtein(a, b string) int {
	return distance([]rune(Fold(a)), []rune(Fold(b)))
}

// Score returns (L - d) / L where d is the case-insensitive edit distance
// and L the rune length of the longer folded string. Two empty strings
// score 1.0.
func Score(a, b string) float64 {
	fa, fb := Fold(a), Fold(b)
	longest := max(utf8.RuneCountInString(fa), utf8.RuneCountInString(fb))
	if longest == 0 {
		return 1.0
	}
	d := distance([]rune(fa), []rune(fb))
	return float64(longest-d) / float64(longest)
}

// distance computes Levenshtein distance with a single DP row sized by the
// shorter input: O(min(|a|,|b|)) space, O(|a|·|b|) time.
func distance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0] // row[i-1][j-1]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			above := row[j] // row[i-1][j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(b)]
}
