package hmmlib

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Model is a trainable Gaussian-emission HMM handle constructed from a
// Triple.  The parameter slices are row-major with NState as the leading
// dimension, matching the Triple layout.
type Model struct {

	// Number of states
	NState int

	// The transition probability matrix
	Trans []float64

	// The initial probability distribution
	Init []float64

	// The observation means, one per state
	Mean []float64

	// The observation standard deviations, one per state
	Std []float64

	// The log-likelihood at each completed EM iteration of the most
	// recent Fit call
	LLF []float64

	Warnings Warnings
}

// Warnings counts the numerical issues encountered during reestimation.
type Warnings struct {
	LogLikeDecreased int
	SDTruncate       int
}

// FromTriple constructs a trainable model from a validated triple.
func FromTriple(t Triple) (*Model, error) {

	if err := t.Validate(); err != nil {
		return nil, err
	}

	m := t.NState()
	model := &Model{
		NState: m,
		Trans:  make([]float64, m*m),
		Init:   make([]float64, m),
		Mean:   make([]float64, m),
		Std:    make([]float64, m),
	}
	copy(model.Trans, t.Trans)
	copy(model.Init, t.Init)
	for j, g := range t.Emit {
		model.Mean[j] = g.Mean
		model.Std[j] = g.Std
	}

	return model, nil
}

// Triple exports the current model parameters as a triple.
func (m *Model) Triple() Triple {

	t := Triple{
		Trans: make([]float64, len(m.Trans)),
		Emit:  make([]Gaussian, m.NState),
		Init:  make([]float64, len(m.Init)),
	}
	copy(t.Trans, m.Trans)
	copy(t.Init, m.Init)
	for j := 0; j < m.NState; j++ {
		t.Emit[j] = Gaussian{Mean: m.Mean[j], Std: m.Std[j]}
	}

	return t
}

// logObsProb returns the exact Gaussian log-density of observing y in
// state st, including the normalizing constant.
func (m *Model) logObsProb(y float64, st int) float64 {
	z := (y - m.Mean[st]) / m.Std[st]
	return -math.Log(m.Std[st]) - z*z/2 - math.Log(2*math.Pi)/2
}

// LogLikelihood returns the log-likelihood of the sequence under the
// current parameters, computed with the scaled forward recursion.
func (m *Model) LogLikelihood(seq []float64) (float64, error) {

	if len(seq) == 0 {
		return 0, ErrEmptySequence
	}

	alpha := make([]float64, m.NState)
	wk := make([]float64, m.NState)

	for j := 0; j < m.NState; j++ {
		alpha[j] = m.Init[j] * math.Exp(m.logObsProb(seq[0], j))
	}
	llf, err := rescale(alpha)
	if err != nil {
		return 0, err
	}

	for t := 1; t < len(seq); t++ {
		for j2 := 0; j2 < m.NState; j2++ {
			var u float64
			for j1 := 0; j1 < m.NState; j1++ {
				u += alpha[j1] * m.Trans[j1*m.NState+j2]
			}
			wk[j2] = u * math.Exp(m.logObsProb(seq[t], j2))
		}
		copy(alpha, wk)
		c, err := rescale(alpha)
		if err != nil {
			return 0, err
		}
		llf += c
	}

	return llf, nil
}

// rescale normalizes x to sum to 1 and returns the log of the scaling
// constant.
func rescale(x []float64) (float64, error) {
	s := floats.Sum(x)
	if s <= 0 || math.IsNaN(s) {
		return 0, ErrUnderflow
	}
	floats.Scale(1/s, x)
	return math.Log(s), nil
}

// seqStats holds one sequence's sufficient statistics from an E step.
// Each sequence gets its own slot so that folding the statistics together
// happens in a fixed order, keeping repeated runs bit-identical.
type seqStats struct {
	init  []float64 // expected initial-state occupancy
	trnum []float64 // numerator of the transition update
	trden []float64 // denominator of the transition update
	wsum  []float64 // total state occupancy
	osum  []float64 // occupancy-weighted observations
	osum2 []float64 // occupancy-weighted squared observations
	llf   float64
	err   error
}

func newSeqStats(m int) *seqStats {
	return &seqStats{
		init:  make([]float64, m),
		trnum: make([]float64, m*m),
		trden: make([]float64, m),
		wsum:  make([]float64, m),
		osum:  make([]float64, m),
		osum2: make([]float64, m),
	}
}

// accumulateSeq runs the scaled forward-backward recursions for one
// sequence and fills in its sufficient statistics.
func (m *Model) accumulateSeq(seq []float64, st *seqStats, wg *sync.WaitGroup) {

	defer wg.Done()

	ns := m.NState
	T := len(seq)

	// Each sequence needs its own workspace
	fprob := make([]float64, T*ns)
	bprob := make([]float64, T*ns)
	obspr := make([]float64, T*ns)

	for t := 0; t < T; t++ {
		for j := 0; j < ns; j++ {
			obspr[t*ns+j] = math.Exp(m.logObsProb(seq[t], j))
		}
	}

	// Forward sweep
	for j := 0; j < ns; j++ {
		fprob[j] = m.Init[j] * obspr[j]
	}
	c, err := rescale(fprob[0:ns])
	if err != nil {
		st.err = err
		return
	}
	st.llf = c
	for t := 1; t < T; t++ {
		j0, j1 := (t-1)*ns, t*ns
		for st2 := 0; st2 < ns; st2++ {
			var u float64
			for st1 := 0; st1 < ns; st1++ {
				u += fprob[j0+st1] * m.Trans[st1*ns+st2]
			}
			fprob[j1+st2] = u * obspr[j1+st2]
		}
		c, err = rescale(fprob[j1 : j1+ns])
		if err != nil {
			st.err = err
			return
		}
		st.llf += c
	}

	// Backward sweep; each time slice carries one arbitrary scale
	// constant, which the per-slice normalizations below cancel out.
	j1 := (T - 1) * ns
	for j := 0; j < ns; j++ {
		bprob[j1+j] = 1
	}
	for t := T - 2; t >= 0; t-- {
		j0, j1 := t*ns, (t+1)*ns
		for st1 := 0; st1 < ns; st1++ {
			var u float64
			for st2 := 0; st2 < ns; st2++ {
				u += m.Trans[st1*ns+st2] * obspr[j1+st2] * bprob[j1+st2]
			}
			bprob[j0+st1] = u
		}
		if _, err := rescale(bprob[j0 : j0+ns]); err != nil {
			st.err = err
			return
		}
	}

	gamma := make([]float64, ns)
	xi := make([]float64, ns*ns)

	for t := 0; t < T; t++ {
		i := t * ns
		floats.MulTo(gamma, fprob[i:i+ns], bprob[i:i+ns])
		normalizeSum(gamma, 1/float64(ns))

		if t == 0 {
			floats.Add(st.init, gamma)
		}
		for j := 0; j < ns; j++ {
			st.wsum[j] += gamma[j]
			st.osum[j] += gamma[j] * seq[t]
			st.osum2[j] += gamma[j] * seq[t] * seq[t]
		}

		if t < T-1 {
			j1 := (t + 1) * ns
			for st1 := 0; st1 < ns; st1++ {
				for st2 := 0; st2 < ns; st2++ {
					xi[st1*ns+st2] = fprob[i+st1] * m.Trans[st1*ns+st2] *
						obspr[j1+st2] * bprob[j1+st2]
				}
			}
			normalizeSum(xi, 0)
			floats.Add(st.trnum, xi)
			for st1 := 0; st1 < ns; st1++ {
				for st2 := 0; st2 < ns; st2++ {
					st.trden[st1] += xi[st1*ns+st2]
				}
			}
		}
	}
}

// Fit reestimates the model parameters from the given sequences using the
// EM (Baum-Welch) algorithm, for at most maxiter iterations.  The
// recursions for the individual sequences run concurrently; their
// statistics are folded together in sequence order, so identical inputs
// produce identical parameters.
func (m *Model) Fit(seqs [][]float64, maxiter int) error {

	if len(seqs) == 0 {
		return ErrEmptySequence
	}
	for _, s := range seqs {
		if len(s) == 0 {
			return ErrEmptySequence
		}
	}

	ns := m.NState
	m.LLF = make([]float64, 0, maxiter)
	var llf float64

	for iter := 0; iter < maxiter; iter++ {

		stats := make([]*seqStats, len(seqs))
		var wg sync.WaitGroup
		for q, seq := range seqs {
			stats[q] = newSeqStats(ns)
			wg.Add(1)
			go m.accumulateSeq(seq, stats[q], &wg)
		}
		wg.Wait()

		ac := newSeqStats(ns)
		for _, st := range stats {
			if st.err != nil {
				return st.err
			}
			floats.Add(ac.init, st.init)
			floats.Add(ac.trnum, st.trnum)
			floats.Add(ac.trden, st.trden)
			floats.Add(ac.wsum, st.wsum)
			floats.Add(ac.osum, st.osum)
			floats.Add(ac.osum2, st.osum2)
			ac.llf += st.llf
		}

		// M step
		normalizeSum(ac.init, 1/float64(ns))
		copy(m.Init, ac.init)

		for st1 := 0; st1 < ns; st1++ {
			row := m.Trans[st1*ns : (st1+1)*ns]
			if ac.trden[st1] < 1e-10 {
				// State never occupied before the final time point;
				// its transition row stays unchanged.
				continue
			}
			for st2 := 0; st2 < ns; st2++ {
				row[st2] = ac.trnum[st1*ns+st2] / ac.trden[st1]
			}
			normalizeSum(row, 1/float64(ns))
		}

		for j := 0; j < ns; j++ {
			if ac.wsum[j] < 1e-10 {
				continue
			}
			mu := ac.osum[j] / ac.wsum[j]
			v := ac.osum2[j]/ac.wsum[j] - mu*mu
			m.Mean[j] = mu
			if v < sdmin*sdmin {
				m.Std[j] = sdmin
				m.Warnings.SDTruncate++
			} else {
				m.Std[j] = math.Sqrt(v)
			}
		}

		llfnew := ac.llf
		if iter > 0 {
			if llfnew < llf-1e-10 {
				m.Warnings.LogLikeDecreased++
			} else if llfnew-llf < 1e-8 {
				m.LLF = append(m.LLF, llfnew)
				break
			}
		}
		llf = llfnew
		m.LLF = append(m.LLF, llf)
	}

	return nil
}

// normalize the values in x to have a sum of 1, falling back to the
// constant z if the sum underflows.
func normalizeSum(x []float64, z float64) {
	scale := floats.Sum(x)
	if scale < 1e-10 {
		for j := range x {
			x[j] = z
		}
		return
	}
	floats.Scale(1/scale, x)
}
