// Package hmmlib implements Gaussian-emission hidden Markov models over
// one-dimensional observation sequences: the (A, B, pi) triple value type,
// log-likelihood evaluation, Baum-Welch reestimation, and block-diagonal
// composition of several models into a single mixture model.
package hmmlib

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// Distributions (rows of A, pi) must sum to 1 within this tolerance.
	probTol = 1e-6

	// The observation SD is never allowed to go below this value during
	// reestimation.
	sdmin = 1e-8
)

var (
	// ErrNoStates indicates a triple with zero states.
	ErrNoStates = errors.New("hmmlib: triple must have at least one state")

	// ErrShape indicates mismatched dimensions between A, B and pi.
	ErrShape = errors.New("hmmlib: inconsistent triple dimensions")

	// ErrNotStochastic indicates a transition row or initial distribution
	// that does not sum to 1.
	ErrNotStochastic = errors.New("hmmlib: distribution does not sum to 1")

	// ErrBadSD indicates a non-positive emission standard deviation.
	ErrBadSD = errors.New("hmmlib: emission standard deviation must be positive")

	// ErrEmptySequence indicates an empty observation sequence.
	ErrEmptySequence = errors.New("hmmlib: empty observation sequence")

	// ErrUnderflow indicates that all forward probabilities vanished,
	// usually because an observation is impossibly far from every state.
	ErrUnderflow = errors.New("hmmlib: forward probabilities underflowed")
)

// Gaussian holds the emission parameters for one state.
type Gaussian struct {
	Mean float64
	Std  float64
}

// Triple is the canonical (A, B, pi) representation of an HMM: a row-major
// NState x NState transition matrix, one Gaussian per state, and an
// initial-state distribution.  Triples are value types; the package never
// mutates a triple after returning it.
type Triple struct {
	Trans []float64
	Emit  []Gaussian
	Init  []float64
}

// NState returns the number of states in the triple.
func (t Triple) NState() int {
	return len(t.Init)
}

// At returns the transition probability from state i to state j.
func (t Triple) At(i, j int) float64 {
	return t.Trans[i*t.NState()+j]
}

// Validate checks the structural invariants of the triple: at least one
// state, square A, matching B and pi lengths, stochastic rows, and strictly
// positive emission standard deviations.
func (t Triple) Validate() error {

	m := t.NState()
	if m == 0 {
		return ErrNoStates
	}
	if len(t.Trans) != m*m || len(t.Emit) != m {
		return ErrShape
	}

	for i := 0; i < m; i++ {
		row := t.Trans[i*m : (i+1)*m]
		if math.Abs(floats.Sum(row)-1) > probTol {
			return ErrNotStochastic
		}
	}
	if math.Abs(floats.Sum(t.Init)-1) > probTol {
		return ErrNotStochastic
	}

	for _, g := range t.Emit {
		if g.Std <= 0 || math.IsNaN(g.Std) || math.IsNaN(g.Mean) {
			return ErrBadSD
		}
	}

	return nil
}

// UniformTriple returns a triple with m states, uniform transition and
// initial distributions (every entry 1/m), and the given emissions.
func UniformTriple(emit []Gaussian) Triple {

	m := len(emit)
	u := 1 / float64(m)

	tr := make([]float64, m*m)
	for i := range tr {
		tr[i] = u
	}
	pi := make([]float64, m)
	for i := range pi {
		pi[i] = u
	}

	b := make([]Gaussian, m)
	copy(b, emit)

	return Triple{Trans: tr, Emit: b, Init: pi}
}
