package smyth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japplebaum/thesis/smyth"
)

func testSeqs(n, length int) [][]float64 {
	seqs := make([][]float64, n)
	for i := range seqs {
		seqs[i] = make([]float64, length)
		for t := range seqs[i] {
			seqs[i][t] = float64(i)
		}
	}
	return seqs
}

func baseConfig() smyth.Config {
	return smyth.Config{
		TargetM: 1,
		MinK:    2,
		MaxK:    2,
		Seed:    1,
	}
}

func TestNewValidation(t *testing.T) {

	seqs := testSeqs(4, 10)

	_, err := smyth.New(seqs, baseConfig())
	require.NoError(t, err)

	_, err = smyth.New(nil, baseConfig())
	assert.ErrorIs(t, err, smyth.ErrNoSequences)

	cfg := baseConfig()
	cfg.TargetM = 0
	_, err = smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrBadTargetM)

	cfg = baseConfig()
	cfg.MinK, cfg.MaxK = 3, 2
	_, err = smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrBadKRange)

	cfg = baseConfig()
	cfg.MinK = 0
	_, err = smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrBadKRange)

	// More components than sequences
	cfg = baseConfig()
	cfg.MaxK = 5
	_, err = smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrBadKRange)

	// An empty sequence in an otherwise fine set
	bad := testSeqs(4, 10)
	bad[2] = nil
	_, err = smyth.New(bad, baseConfig())
	assert.ErrorIs(t, err, smyth.ErrNoObservations)
}

func TestNewRejectsUnknownOptions(t *testing.T) {

	seqs := testSeqs(4, 10)

	cfg := baseConfig()
	cfg.DistFunc = "mahalanobis"
	_, err := smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrUnknownOption)

	cfg = baseConfig()
	cfg.InitMethod = "oracle"
	_, err = smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrUnknownOption)

	cfg = baseConfig()
	cfg.ClusterAlg = "spectral"
	_, err = smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrUnknownOption)

	cfg = baseConfig()
	cfg.TrainMode = "joint"
	_, err = smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrUnknownOption)
}

func TestNewRejectsUnimplementedVariants(t *testing.T) {

	// The declared variants fail loudly instead of silently falling back
	// to their implemented counterparts.
	seqs := testSeqs(4, 10)

	cfg := baseConfig()
	cfg.InitMethod = smyth.InitRandom
	_, err := smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrUnimplemented)

	cfg = baseConfig()
	cfg.TrainMode = smyth.TrainBlockDiag
	_, err = smyth.New(seqs, cfg)
	assert.ErrorIs(t, err, smyth.ErrUnimplemented)
}

func TestKValues(t *testing.T) {

	cfg := baseConfig()
	cfg.MinK, cfg.MaxK = 2, 4
	hc, err := smyth.New(testSeqs(6, 10), cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, hc.KValues())
}
