package cluster

import "math"

// merge records one agglomeration step.  Node ids follow the usual linkage
// convention: ids 0..n-1 are the original items, and the cluster created
// by the i-th merge has id n+i.
type merge struct {
	a, b int
	dist float64
}

// Tree is an agglomerative clustering tree built once from a distance
// matrix with complete (maximum) linkage.  Cutting the tree at any k is
// cheap, so one tree serves a whole range of requested group counts.
type Tree struct {
	n      int
	merges []merge
}

// BuildTree performs complete-linkage agglomerative clustering over the
// full distance matrix and returns the merge tree.  Ties are broken toward
// the lexicographically smallest pair so the tree is deterministic.
func BuildTree(dm *DistMatrix) (*Tree, error) {

	n := dm.Len()
	if n < 1 {
		return nil, ErrNoData
	}

	// Working inter-cluster distances, updated in place with the
	// Lance-Williams rule for complete linkage.
	work := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			work[i*n+j] = dm.At(i, j)
		}
	}

	active := make([]bool, n)
	nodeID := make([]int, n)
	for i := range active {
		active[i] = true
		nodeID[i] = i
	}

	t := &Tree{n: n, merges: make([]merge, 0, n-1)}

	for step := 0; step < n-1; step++ {

		// Closest active pair
		bx, by := -1, -1
		bd := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && work[i*n+j] < bd {
					bd = work[i*n+j]
					bx, by = i, j
				}
			}
		}

		t.merges = append(t.merges, merge{a: nodeID[bx], b: nodeID[by], dist: bd})
		nodeID[bx] = n + step
		active[by] = false

		// Complete linkage: distance to the merged cluster is the
		// maximum of the distances to its two halves.
		for j := 0; j < n; j++ {
			if j == bx || !active[j] {
				continue
			}
			d := math.Max(work[bx*n+j], work[by*n+j])
			work[bx*n+j] = d
			work[j*n+bx] = d
		}
	}

	return t, nil
}

// Cut slices the tree into exactly k groups and returns one label per
// original item.  Labels are in [0, k), numbered by order of first
// appearance over the item indices.
func (t *Tree) Cut(k int) ([]int, error) {

	if k < 1 || k > t.n {
		return nil, ErrBadK
	}

	// Replay the first n-k merges over a union-find on the items.
	parent := make([]int, t.n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	// rep[id] is a representative item for the cluster with that node id.
	rep := make([]int, t.n+len(t.merges))
	for i := 0; i < t.n; i++ {
		rep[i] = i
	}
	for i := 0; i < t.n-k; i++ {
		m := t.merges[i]
		ra, rb := find(rep[m.a]), find(rep[m.b])
		parent[rb] = ra
		rep[t.n+i] = ra
	}

	labels := make([]int, t.n)
	next := 0
	seen := make(map[int]int)
	for i := 0; i < t.n; i++ {
		r := find(i)
		l, ok := seen[r]
		if !ok {
			l = next
			seen[r] = l
			next++
		}
		labels[i] = l
	}

	return labels, nil
}
