package hmmlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japplebaum/thesis/hmmlib"
)

func validTriple() hmmlib.Triple {
	return hmmlib.Triple{
		Trans: []float64{0.7, 0.3, 0.2, 0.8},
		Emit:  []hmmlib.Gaussian{{Mean: 0, Std: 1}, {Mean: 5, Std: 2}},
		Init:  []float64{0.4, 0.6},
	}
}

func TestTripleValidate(t *testing.T) {

	require.NoError(t, validTriple().Validate())

	var empty hmmlib.Triple
	assert.ErrorIs(t, empty.Validate(), hmmlib.ErrNoStates)

	tr := validTriple()
	tr.Trans = tr.Trans[:3]
	assert.ErrorIs(t, tr.Validate(), hmmlib.ErrShape)

	tr = validTriple()
	tr.Emit = tr.Emit[:1]
	assert.ErrorIs(t, tr.Validate(), hmmlib.ErrShape)

	tr = validTriple()
	tr.Trans = []float64{0.7, 0.2, 0.2, 0.8}
	assert.ErrorIs(t, tr.Validate(), hmmlib.ErrNotStochastic)

	tr = validTriple()
	tr.Init = []float64{0.9, 0.3}
	assert.ErrorIs(t, tr.Validate(), hmmlib.ErrNotStochastic)

	tr = validTriple()
	tr.Emit[1].Std = 0
	assert.ErrorIs(t, tr.Validate(), hmmlib.ErrBadSD)
}

func TestTripleAt(t *testing.T) {

	tr := validTriple()
	assert.Equal(t, 0.7, tr.At(0, 0))
	assert.Equal(t, 0.3, tr.At(0, 1))
	assert.Equal(t, 0.2, tr.At(1, 0))
	assert.Equal(t, 0.8, tr.At(1, 1))
}

func TestUniformTriple(t *testing.T) {

	emit := []hmmlib.Gaussian{{Mean: 1, Std: 0.5}, {Mean: 2, Std: 0.5}, {Mean: 3, Std: 0.5}}
	tr := hmmlib.UniformTriple(emit)

	require.NoError(t, tr.Validate())
	require.Equal(t, 3, tr.NState())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, 1.0/3, tr.At(i, j), 1e-12)
		}
		assert.InDelta(t, 1.0/3, tr.Init[i], 1e-12)
	}
	assert.Equal(t, emit, tr.Emit)

	// The emissions are copied, not aliased.
	emit[0].Mean = 99
	assert.Equal(t, 1.0, tr.Emit[0].Mean)
}

func TestComposite(t *testing.T) {

	a := hmmlib.Triple{
		Trans: []float64{0.7, 0.3, 0.2, 0.8},
		Emit:  []hmmlib.Gaussian{{Mean: 0, Std: 1}, {Mean: 1, Std: 1}},
		Init:  []float64{0.4, 0.6},
	}
	b := hmmlib.Triple{
		Trans: []float64{1},
		Emit:  []hmmlib.Gaussian{{Mean: 9, Std: 2}},
		Init:  []float64{1},
	}

	comp, err := hmmlib.Composite([]hmmlib.Triple{a, b}, []int{3, 1})
	require.NoError(t, err)
	require.NoError(t, comp.Validate())
	require.Equal(t, 3, comp.NState())

	// Diagonal blocks carry the component transitions, off-diagonal
	// blocks are zero.
	assert.Equal(t, 0.7, comp.At(0, 0))
	assert.Equal(t, 0.3, comp.At(0, 1))
	assert.Equal(t, 0.8, comp.At(1, 1))
	assert.Equal(t, 1.0, comp.At(2, 2))
	assert.Equal(t, 0.0, comp.At(0, 2))
	assert.Equal(t, 0.0, comp.At(2, 0))
	assert.Equal(t, 0.0, comp.At(2, 1))

	assert.Equal(t, []hmmlib.Gaussian{
		{Mean: 0, Std: 1}, {Mean: 1, Std: 1}, {Mean: 9, Std: 2},
	}, comp.Emit)

	// Initial mass splits 3:1 between the components.
	assert.InDelta(t, 0.75*0.4, comp.Init[0], 1e-12)
	assert.InDelta(t, 0.75*0.6, comp.Init[1], 1e-12)
	assert.InDelta(t, 0.25, comp.Init[2], 1e-12)
}

func TestCompositeErrors(t *testing.T) {

	_, err := hmmlib.Composite(nil, nil)
	assert.ErrorIs(t, err, hmmlib.ErrNoComponents)

	a := validTriple()
	_, err = hmmlib.Composite([]hmmlib.Triple{a}, []int{1, 2})
	assert.ErrorIs(t, err, hmmlib.ErrBadWeights)

	_, err = hmmlib.Composite([]hmmlib.Triple{a}, []int{0})
	assert.ErrorIs(t, err, hmmlib.ErrBadWeights)

	bad := validTriple()
	bad.Init = []float64{0.9, 0.3}
	_, err = hmmlib.Composite([]hmmlib.Triple{bad}, []int{1})
	assert.ErrorIs(t, err, hmmlib.ErrNotStochastic)
}
