package cluster

import (
	"math"
	"math/rand"
)

const kmedoidsMaxIter = 100

// KMedoids clusters the items of the distance matrix around k medoids,
// restarting npass times from random initial medoids and keeping the
// solution with the lowest total within-cluster distance.  It returns the
// labels of the best solution (compact, in order of first appearance), its
// total distance, and the number of passes that found that solution.
func KMedoids(dm *DistMatrix, k, npass int, rng *rand.Rand) ([]int, float64, int, error) {

	n := dm.Len()
	if k < 1 || k > n {
		return nil, 0, 0, ErrBadK
	}
	if npass < 1 {
		npass = 1
	}

	var best []int
	bestErr := math.Inf(1)
	nfound := 0

	for pass := 0; pass < npass; pass++ {

		labels, toterr := kmedoidsOnce(dm, k, rng)

		switch {
		case toterr < bestErr-1e-12:
			bestErr = toterr
			best = labels
			nfound = 1
		case math.Abs(toterr-bestErr) <= 1e-12:
			nfound++
		}
	}

	return compactLabels(best), bestErr, nfound, nil
}

// kmedoidsOnce runs alternating assign/update sweeps to convergence from a
// random set of initial medoids.  The returned labels hold medoid item
// indices.
func kmedoidsOnce(dm *DistMatrix, k int, rng *rand.Rand) ([]int, float64) {

	n := dm.Len()

	medoids := rng.Perm(n)[:k]
	labels := make([]int, n)

	// A medoid is always nearest to itself, so no cluster can come back
	// empty from an assignment sweep.
	assign := func() {
		for i := 0; i < n; i++ {
			best := medoids[0]
			bestd := dm.At(i, best)
			for _, m := range medoids[1:] {
				if d := dm.At(i, m); d < bestd {
					bestd = d
					best = m
				}
			}
			labels[i] = best
		}
	}

	for iter := 0; iter < kmedoidsMaxIter; iter++ {

		assign()

		// Move each medoid to the member minimizing the total distance
		// to its cluster.
		changed := false
		for c, m := range medoids {
			bestm := m
			bestd := math.Inf(1)
			for i := 0; i < n; i++ {
				if labels[i] != m {
					continue
				}
				var tot float64
				for j := 0; j < n; j++ {
					if labels[j] == m {
						tot += dm.At(i, j)
					}
				}
				if tot < bestd {
					bestd = tot
					bestm = i
				}
			}
			if bestm != m {
				medoids[c] = bestm
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	assign()
	var toterr float64
	for i := 0; i < n; i++ {
		toterr += dm.At(i, labels[i])
	}

	return labels, toterr
}
