// Package seqdist provides distances computed directly on observation
// sequences, without fitting a model.
package seqdist

// EditDistance returns the Levenshtein distance between two scalar
// sequences: the minimum number of insertions, deletions and
// substitutions needed to turn a into b, with observations compared for
// exact equality.
//
// The DP table is kept as two rolling rows, so memory is O(min edge) and
// time is O(len(a)*len(b)).
func EditDistance(a, b []float64) float64 {

	if len(a) == 0 {
		return float64(len(b))
	}
	if len(b) == 0 {
		return float64(len(a))
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub++
			}
			ins := prev[j] + 1
			del := curr[j-1] + 1
			curr[j] = min3(sub, ins, del)
		}
		prev, curr = curr, prev
	}

	return float64(prev[len(b)])
}

// min3 returns the minimum of three ints.
func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
