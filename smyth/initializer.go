package smyth

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/japplebaum/thesis/cluster"
	"github.com/japplebaum/thesis/hmmlib"
)

// EmissionFloor is the lower bound placed on every emission standard
// deviation of a default model.  A cluster of uniform observations yields
// a zero sample deviation, and a very small deviation underflows the
// log-likelihood, so sigma is padded to at least this value.
const EmissionFloor = 0.5

// smythEmission clusters the flattened observations of S into at most
// targetM groups and returns one (mean, stddev) pair per non-empty group.
// The returned list has m' = min(targetM, distinct values) entries or
// fewer, when the clusterer cannot separate the data further.
func smythEmission(S [][]float64, targetM int, rng *rand.Rand) ([]hmmlib.Gaussian, error) {

	merged, distinct := PrepareObservations(S)
	if len(merged) == 0 {
		return nil, ErrNoObservations
	}

	mPrime := targetM
	if len(distinct) < mPrime {
		mPrime = len(distinct)
	}

	labels, err := cluster.KMeans(merged, mPrime, rng)
	if err != nil {
		return nil, errors.Wrap(err, "clustering observations")
	}

	ngroup := 0
	for _, l := range labels {
		if l+1 > ngroup {
			ngroup = l + 1
		}
	}

	groups := make([][]float64, ngroup)
	for i, l := range labels {
		groups[l] = append(groups[l], merged[i][0])
	}

	B := make([]hmmlib.Gaussian, ngroup)
	for g, obs := range groups {
		B[g] = hmmlib.Gaussian{
			Mean: stat.Mean(obs, nil),
			Std:  stat.PopStdDev(obs, nil),
		}
	}

	return B, nil
}

// DefaultTriple initializes an HMM for the sequences in S using Smyth's
// "default" method: the emission distribution comes from clustering the
// observations into at most targetM groups, the transition matrix and
// initial distribution start uniform, and the model is trained once
// against S.  The returned triple keeps the trained transition matrix and
// initial distribution but the clustering-derived emissions, with every
// standard deviation floored at EmissionFloor.
func DefaultTriple(S [][]float64, targetM, maxiter int, rng *rand.Rand) (hmmlib.Triple, error) {

	B, err := smythEmission(S, targetM, rng)
	if err != nil {
		return hmmlib.Triple{}, err
	}

	// Flooring before training keeps the initial Gaussians well defined
	// when a group has uniform data; the floored values are also what the
	// default triple reports as its emissions.
	for i := range B {
		if B[i].Std < EmissionFloor {
			B[i].Std = EmissionFloor
		}
	}

	model, err := hmmlib.FromTriple(hmmlib.UniformTriple(B))
	if err != nil {
		return hmmlib.Triple{}, err
	}
	if err := model.Fit(S, maxiter); err != nil {
		return hmmlib.Triple{}, errors.Wrap(err, "training default model")
	}

	tri := model.Triple()
	copy(tri.Emit, B)

	return tri, nil
}
