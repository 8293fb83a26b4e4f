package smyth

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/japplebaum/thesis/cluster"
	"github.com/japplebaum/thesis/hmmlib"
	"github.com/japplebaum/thesis/pool"
	"github.com/japplebaum/thesis/seqdist"
)

// seqPair addresses one unordered sequence pair (i < j).
type seqPair struct {
	i, j int
}

// distanceMatrix computes the condensed pairwise distance matrix with the
// configured distance function.
func (hc *HMMCluster) distanceMatrix(p *pool.Pool) (*cluster.DistMatrix, error) {

	var condensed []float64
	var err error

	switch hc.cfg.DistFunc {
	case DistHMM:
		condensed, err = hc.hmmDistances(p)
	case DistEdit:
		condensed, err = hc.editDistances(p)
	default:
		return nil, errors.Wrapf(ErrUnknownOption, "distance function %q", hc.cfg.DistFunc)
	}
	if err != nil {
		return nil, err
	}

	return cluster.NewDistMatrix(hc.n, condensed)
}

// hmmDistances computes Rabiner's symmetrized distance for every pair:
// one default model per sequence first, then the cross log-likelihoods.
// The pair batch is split into fixed-size sub-batches submitted to the
// pool one at a time, so the number of queued tasks stays bounded on
// large sequence sets.  The output is in row-major (i < j) order no
// matter how the batch was chunked.
func (hc *HMMCluster) hmmDistances(p *pool.Pool) ([]float64, error) {

	hc.log.Info("generating default HMMs")
	start := time.Now()

	idx := make([]int, hc.n)
	for i := range idx {
		idx[i] = i
	}
	triples, err := pool.Map(p, idx, func(i int) (hmmlib.Triple, error) {
		rng := rand.New(rand.NewSource(hc.cfg.Seed + int64(i)))
		return DefaultTriple([][]float64{hc.S[i]}, hc.cfg.TargetM, hc.cfg.MaxIter, rng)
	})
	if err != nil {
		return nil, errors.Wrap(err, "building default models")
	}
	hc.InitTriples = triples
	hc.Times["init_hmms"] = time.Since(start)

	npairs := hc.n * (hc.n - 1) / 2
	hc.log.WithField("pairs", npairs).Info("computing distance matrix")
	start = time.Now()

	condensed := make([]float64, 0, npairs)
	i, j := 0, 1
	for _, span := range pool.Chunks(npairs, hc.cfg.BatchSize) {

		pairs := make([]seqPair, 0, span[1]-span[0])
		for len(pairs) < span[1]-span[0] {
			pairs = append(pairs, seqPair{i: i, j: j})
			j++
			if j == hc.n {
				i++
				j = i + 1
			}
		}

		ds, err := pool.Map(p, pairs, hc.symDistance)
		if err != nil {
			return nil, err
		}
		condensed = append(condensed, ds...)
	}
	hc.Times["distance_matrix"] = time.Since(start)

	// Log-likelihoods are <= 0; a distance must be non-negative.
	for q := range condensed {
		condensed[q] = -condensed[q]
	}
	if len(condensed) > 0 {
		hc.log.WithFields(map[string]interface{}{
			"min": floats.Min(condensed),
			"max": floats.Max(condensed),
		}).Info("distance matrix done")
	}

	return condensed, nil
}

// symDistance returns the symmetrized distance between the pair's
// sequences given their default models: the average of the two cross
// log-likelihoods.  Both terms are log-probabilities and must be <= 0; a
// positive value means the model went numerically unstable and fails the
// batch.
func (hc *HMMCluster) symDistance(pr seqPair) (float64, error) {

	m1, err := hmmlib.FromTriple(hc.InitTriples[pr.i])
	if err != nil {
		return 0, errors.Wrapf(err, "model %d", pr.i)
	}
	m2, err := hmmlib.FromTriple(hc.InitTriples[pr.j])
	if err != nil {
		return 0, errors.Wrapf(err, "model %d", pr.j)
	}

	// L(seq i | model j) and L(seq j | model i)
	l12, err := m2.LogLikelihood(hc.S[pr.i])
	if err != nil {
		return 0, errors.Wrapf(err, "pair (%d,%d)", pr.i, pr.j)
	}
	l21, err := m1.LogLikelihood(hc.S[pr.j])
	if err != nil {
		return 0, errors.Wrapf(err, "pair (%d,%d)", pr.i, pr.j)
	}
	if l12 > 0 || l21 > 0 {
		return 0, errors.Wrapf(ErrPositiveLogLik, "pair (%d,%d): %f, %f", pr.i, pr.j, l12, l21)
	}

	return (l12 + l21) / 2, nil
}

// editDistances computes the sequence edit distance for every pair, with
// no model construction.
func (hc *HMMCluster) editDistances(p *pool.Pool) ([]float64, error) {

	npairs := hc.n * (hc.n - 1) / 2
	pairs := make([]seqPair, 0, npairs)
	for i := 0; i < hc.n; i++ {
		for j := i + 1; j < hc.n; j++ {
			pairs = append(pairs, seqPair{i: i, j: j})
		}
	}

	hc.log.WithField("pairs", npairs).Info("computing distance matrix")
	start := time.Now()
	condensed, err := pool.Map(p, pairs, func(pr seqPair) (float64, error) {
		return seqdist.EditDistance(hc.S[pr.i], hc.S[pr.j]), nil
	})
	if err != nil {
		return nil, err
	}
	hc.Times["distance_matrix"] = time.Since(start)

	return condensed, nil
}
