package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Lloyd iterations are capped at this count; assignments almost always
// stabilize far earlier on scalar data.
const kmeansMaxIter = 100

// KMeans partitions the observation vectors into at most k non-empty
// groups using k-means with k-means++ seeding.  It returns one label per
// observation; labels are compact, in [0, r) with r <= k, and every label
// has at least one member.  Fewer than k groups come back when the data
// cannot support k distinct centroids.
func KMeans(data [][]float64, k int, rng *rand.Rand) ([]int, error) {

	n := len(data)
	if n == 0 {
		return nil, ErrNoData
	}
	if k < 1 || k > n {
		return nil, ErrBadK
	}

	centroids := seedPlusPlus(data, k, rng)
	labels := make([]int, n)
	prev := make([]int, n)

	for iter := 0; iter < kmeansMaxIter; iter++ {

		for i, x := range data {
			labels[i] = nearest(x, centroids)
		}
		if iter > 0 && intsEqual(labels, prev) {
			break
		}
		copy(prev, labels)

		// Recompute centroids; empty groups keep their previous centroid
		// and are dropped by the compaction below if they stay empty.
		dim := len(data[0])
		counts := make([]int, len(centroids))
		sums := make([][]float64, len(centroids))
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, x := range data {
			counts[labels[i]]++
			floats.Add(sums[labels[i]], x)
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			centroids[c] = sums[c]
		}
	}

	return compactLabels(labels), nil
}

// seedPlusPlus chooses initial centroids with the k-means++ rule: the
// first uniformly, each subsequent one with probability proportional to
// the squared distance from the nearest centroid chosen so far.
func seedPlusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {

	n := len(data)
	centroids := make([][]float64, 0, k)
	first := append([]float64(nil), data[rng.Intn(n)]...)
	centroids = append(centroids, first)

	d2 := make([]float64, n)
	for len(centroids) < k {

		var total float64
		for i, x := range data {
			d := floats.Distance(x, centroids[nearest(x, centroids)], 2)
			d2[i] = d * d
			total += d2[i]
		}

		if total <= 0 {
			// All points coincide with existing centroids; additional
			// centroids would only create empty groups.
			break
		}

		r := rng.Float64() * total
		var cum float64
		pick := n - 1
		for i, w := range d2 {
			cum += w
			if cum >= r {
				pick = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), data[pick]...))
	}

	return centroids
}

// nearest returns the index of the centroid closest to x, breaking ties
// toward the lowest index.
func nearest(x []float64, centroids [][]float64) int {

	best := 0
	bestd := math.Inf(1)
	for c, cen := range centroids {
		d := floats.Distance(x, cen, 2)
		if d < bestd {
			bestd = d
			best = c
		}
	}

	return best
}

// compactLabels renumbers labels to [0, r) in order of first appearance,
// removing any label with no members.
func compactLabels(labels []int) []int {

	remap := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		c, ok := remap[l]
		if !ok {
			c = len(remap)
			remap[l] = c
		}
		out[i] = c
	}

	return out
}

func intsEqual(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
