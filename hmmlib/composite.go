package hmmlib

import "errors"

var (
	// ErrNoComponents indicates a composite with no component triples.
	ErrNoComponents = errors.New("hmmlib: composite requires at least one component")

	// ErrBadWeights indicates component weights that are missing or
	// non-positive.
	ErrBadWeights = errors.New("hmmlib: component weights must be positive")
)

// Composite assembles the component triples into a single block-diagonal
// mixture model.  The transition matrices are placed along the diagonal
// with zero cross-component transitions, the emissions are concatenated,
// and each component's initial distribution is scaled by its share of the
// total weight.  weights[i] is typically the number of sequences assigned
// to component i.
func Composite(components []Triple, weights []int) (Triple, error) {

	if len(components) == 0 {
		return Triple{}, ErrNoComponents
	}
	if len(weights) != len(components) {
		return Triple{}, ErrBadWeights
	}

	var total int
	var nstate int
	for i, c := range components {
		if err := c.Validate(); err != nil {
			return Triple{}, err
		}
		if weights[i] <= 0 {
			return Triple{}, ErrBadWeights
		}
		total += weights[i]
		nstate += c.NState()
	}

	comp := Triple{
		Trans: make([]float64, nstate*nstate),
		Emit:  make([]Gaussian, 0, nstate),
		Init:  make([]float64, 0, nstate),
	}

	// Offset of the current component's diagonal block
	var off int
	for i, c := range components {
		m := c.NState()
		for r := 0; r < m; r++ {
			row := comp.Trans[(off+r)*nstate+off:]
			copy(row[:m], c.Trans[r*m:(r+1)*m])
		}
		comp.Emit = append(comp.Emit, c.Emit...)

		w := float64(weights[i]) / float64(total)
		for _, p := range c.Init {
			comp.Init = append(comp.Init, p*w)
		}
		off += m
	}

	return comp, nil
}
