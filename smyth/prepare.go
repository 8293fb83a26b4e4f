package smyth

// PrepareObservations flattens a sequence set into a single list of
// 1-element observation vectors, suitable for the scalar clusterer, and
// collects the set of distinct observation values in the same pass.  The
// distinct count bounds the state count a default model can support.
func PrepareObservations(seqs [][]float64) ([][]float64, map[float64]bool) {

	var total int
	for _, s := range seqs {
		total += len(s)
	}

	merged := make([][]float64, 0, total)
	distinct := make(map[float64]bool)
	for _, s := range seqs {
		for _, o := range s {
			merged = append(merged, []float64{o})
			distinct[o] = true
		}
	}

	return merged, distinct
}
