package cluster_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japplebaum/thesis/cluster"
)

func TestNewDistMatrix(t *testing.T) {

	_, err := cluster.NewDistMatrix(4, []float64{1, 2, 3})
	assert.ErrorIs(t, err, cluster.ErrMatrixSize)

	_, err = cluster.NewDistMatrix(3, []float64{1, -1, 2})
	assert.ErrorIs(t, err, cluster.ErrBadDistance)

	_, err = cluster.NewDistMatrix(3, []float64{1, math.NaN(), 2})
	assert.ErrorIs(t, err, cluster.ErrBadDistance)

	_, err = cluster.NewDistMatrix(3, []float64{1, math.Inf(1), 2})
	assert.ErrorIs(t, err, cluster.ErrBadDistance)

	dm, err := cluster.NewDistMatrix(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, dm.Len())
}

func TestDistMatrixAt(t *testing.T) {

	// Condensed order over 4 items: (0,1) (0,2) (0,3) (1,2) (1,3) (2,3)
	d := []float64{1, 2, 3, 4, 5, 6}
	dm, err := cluster.NewDistMatrix(4, d)
	require.NoError(t, err)

	assert.Equal(t, 4, dm.Len())
	assert.Equal(t, d, dm.Condensed())

	assert.Equal(t, 1.0, dm.At(0, 1))
	assert.Equal(t, 2.0, dm.At(0, 2))
	assert.Equal(t, 3.0, dm.At(0, 3))
	assert.Equal(t, 4.0, dm.At(1, 2))
	assert.Equal(t, 5.0, dm.At(1, 3))
	assert.Equal(t, 6.0, dm.At(2, 3))

	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, dm.At(i, i))
		for j := 0; j < 4; j++ {
			assert.Equal(t, dm.At(j, i), dm.At(i, j))
		}
	}
}
