// Package utils provides common utility functions for the chronograph project.
package utils

// Fuzzy string scoring for entity resolution. Scores are on a 0-100 scale:
// Ratio is a symmetric similarity over whole strings, PartialRatio is
// substring-tolerant so that "AMD" scores high against
// "Advanced Micro Devices, Inc. (AMD)". Both are pure functions and never fail.

// indelDistance computes the edit distance between a and b counting only
// insertions and deletions (substitution costs 2). This is the distance
// underlying the classic SequenceMatcher-style ratio.
func indelDistance(a, b []rune) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				del := prev[j] + 1
				ins := curr[j-1] + 1
				if del < ins {
					curr[j] = del
				} else {
					curr[j] = ins
				}
			}
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// Ratio returns a symmetric similarity score between two strings in [0, 100].
// Identical strings score 100; strings with no common characters score 0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	dist := indelDistance(ra, rb)
	return 100 * (1 - float64(dist)/float64(total))
}

// PartialRatio returns the best Ratio of the shorter string against any
// equal-length window of the longer one, in [0, 100]. A short alias contained
// in a long official name scores close to 100.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := longer[i : i+len(shorter)]
		total := len(shorter) + len(window)
		score := 100 * (1 - float64(indelDistance(shorter, window))/float64(total))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}
