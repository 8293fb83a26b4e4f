package pool_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japplebaum/thesis/pool"
)

func TestMapPreservesOrder(t *testing.T) {

	p := pool.New(4)
	defer p.Release()

	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	// Later items finish first; results still come back in input order.
	results, err := pool.Map(p, items, func(i int) (int, error) {
		time.Sleep(time.Duration(len(items)-i) * time.Millisecond)
		return i * i, nil
	})
	require.NoError(t, err)
	require.Len(t, results, len(items))
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestMapFirstErrorWins(t *testing.T) {

	p := pool.New(2)
	defer p.Release()

	items := []int{0, 1, 2, 3, 4}
	results, err := pool.Map(p, items, func(i int) (int, error) {
		if i >= 2 {
			return 0, fmt.Errorf("item %d failed", i)
		}
		return i, nil
	})

	// All-or-nothing, with the error reported by item position.
	assert.Nil(t, results)
	require.Error(t, err)
	assert.EqualError(t, err, "item 2 failed")
}

func TestMapEmpty(t *testing.T) {

	p := pool.New(1)
	defer p.Release()

	results, err := pool.Map(p, nil, func(i int) (int, error) { return i, nil })
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMapRunsEverything(t *testing.T) {

	p := pool.New(3)
	defer p.Release()

	var calls int64
	items := make([]int, 200)
	_, err := pool.Map(p, items, func(int) (int, error) {
		atomic.AddInt64(&calls, 1)
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200), atomic.LoadInt64(&calls))
}

func TestWorkers(t *testing.T) {

	p := pool.New(7)
	defer p.Release()
	assert.Equal(t, 7, p.Workers())

	q := pool.New(0)
	defer q.Release()
	assert.Greater(t, q.Workers(), 0)
}

func TestChunks(t *testing.T) {

	assert.Nil(t, pool.Chunks(0, 3))
	assert.Equal(t, [][2]int{{0, 5}}, pool.Chunks(5, 0))
	assert.Equal(t, [][2]int{{0, 5}}, pool.Chunks(5, 10))
	assert.Equal(t, [][2]int{{0, 3}, {3, 6}, {6, 9}, {9, 10}}, pool.Chunks(10, 3))
	assert.Equal(t, [][2]int{{0, 4}, {4, 8}}, pool.Chunks(8, 4))

	// Spans tile the range exactly.
	spans := pool.Chunks(1000, 7)
	var covered int
	prev := 0
	for _, s := range spans {
		require.Equal(t, prev, s[0])
		require.Greater(t, s[1], s[0])
		covered += s[1] - s[0]
		prev = s[1]
	}
	assert.Equal(t, 1000, covered)
}
