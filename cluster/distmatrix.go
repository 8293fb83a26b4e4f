// Package cluster provides the clustering primitives used by the mixture
// pipeline: k-means over low-dimensional observation vectors, an
// agglomerative complete-linkage tree over a condensed distance matrix,
// and k-medoids with random restarts.
package cluster

import (
	"errors"
	"math"
)

var (
	// ErrMatrixSize indicates a condensed matrix whose length does not
	// equal n*(n-1)/2.
	ErrMatrixSize = errors.New("cluster: condensed matrix has wrong length")

	// ErrBadDistance indicates a negative, NaN or infinite distance entry.
	ErrBadDistance = errors.New("cluster: distances must be finite and non-negative")

	// ErrBadK indicates a requested group count outside [1, n].
	ErrBadK = errors.New("cluster: k must be in [1, n]")

	// ErrNoData indicates an empty observation set.
	ErrNoData = errors.New("cluster: no observations")
)

// DistMatrix is a condensed pairwise distance matrix over n items: the
// upper triangle without the diagonal, stored row-major over pairs (i, j)
// with i < j.  Entries are finite and non-negative.
type DistMatrix struct {
	n int
	d []float64
}

// NewDistMatrix wraps the condensed entries d for n items, validating the
// length and the entry invariants.
func NewDistMatrix(n int, d []float64) (*DistMatrix, error) {

	if len(d) != n*(n-1)/2 {
		return nil, ErrMatrixSize
	}
	for _, v := range d {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrBadDistance
		}
	}

	return &DistMatrix{n: n, d: d}, nil
}

// Len returns the number of items n.
func (dm *DistMatrix) Len() int {
	return dm.n
}

// Condensed returns the underlying condensed entries.
func (dm *DistMatrix) Condensed() []float64 {
	return dm.d
}

// At returns the distance between items i and j.  The matrix is symmetric
// with a zero diagonal.
func (dm *DistMatrix) At(i, j int) float64 {
	if i == j {
		return 0
	}
	if i > j {
		i, j = j, i
	}
	return dm.d[condensedIndex(dm.n, i, j)]
}

// condensedIndex maps the pair (i, j), i < j, to its position in row-major
// condensed order.
func condensedIndex(n, i, j int) int {
	return i*n - i*(i+1)/2 + j - i - 1
}
