package smyth_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japplebaum/thesis/smyth"
)

func TestPrepareObservations(t *testing.T) {

	merged, distinct := smyth.PrepareObservations([][]float64{{1, 2}, {2, 3, 3}})

	assert.Equal(t, [][]float64{{1}, {2}, {2}, {3}, {3}}, merged)
	assert.Equal(t, map[float64]bool{1: true, 2: true, 3: true}, distinct)

	merged, distinct = smyth.PrepareObservations(nil)
	assert.Empty(t, merged)
	assert.Empty(t, distinct)
}

func TestDefaultTripleUniformData(t *testing.T) {

	// One distinct value caps the model at a single state no matter what
	// targetM asks for, and the zero sample deviation is floored.
	S := [][]float64{{1, 1, 1, 1, 1, 1}}
	tri, err := smyth.DefaultTriple(S, 3, 10, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.NoError(t, tri.Validate())

	require.Equal(t, 1, tri.NState())
	assert.Equal(t, []float64{1}, tri.Trans)
	assert.Equal(t, []float64{1}, tri.Init)
	assert.Equal(t, 1.0, tri.Emit[0].Mean)
	assert.Equal(t, smyth.EmissionFloor, tri.Emit[0].Std)
}

func TestDefaultTripleTwoLevels(t *testing.T) {

	S := [][]float64{
		{0, 0, 0, 10, 10, 10},
		{10, 10, 0, 0, 10, 0},
	}
	tri, err := smyth.DefaultTriple(S, 2, 10, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.NoError(t, tri.Validate())
	require.Equal(t, 2, tri.NState())

	// The emissions come from clustering the observations, so the state
	// means sit on the two data levels exactly; order depends on the
	// clusterer.
	means := []float64{tri.Emit[0].Mean, tri.Emit[1].Mean}
	assert.ElementsMatch(t, []float64{0, 10}, means)
	for _, g := range tri.Emit {
		assert.Equal(t, smyth.EmissionFloor, g.Std)
	}
}

func TestDefaultTripleFloorsEmissions(t *testing.T) {

	rng := rand.New(rand.NewSource(5))
	S := make([][]float64, 3)
	for i := range S {
		S[i] = make([]float64, 40)
		for t := range S[i] {
			// Two tight levels around 0 and 8
			S[i][t] = float64(8*(t%2)) + 0.01*rng.Float64()
		}
	}

	tri, err := smyth.DefaultTriple(S, 2, 10, rng)
	require.NoError(t, err)
	for _, g := range tri.Emit {
		assert.GreaterOrEqual(t, g.Std, smyth.EmissionFloor)
	}
}

func TestDefaultTripleDeterministic(t *testing.T) {

	S := [][]float64{
		{0.1, 0.2, 5.1, 5.3, 0.15, 5.2},
		{5.0, 0.12, 0.18, 5.25, 5.15, 0.11},
	}

	a, err := smyth.DefaultTriple(S, 2, 10, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	b, err := smyth.DefaultTriple(S, 2, 10, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDefaultTripleEmptyInput(t *testing.T) {

	_, err := smyth.DefaultTriple(nil, 2, 10, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, smyth.ErrNoObservations)
}
