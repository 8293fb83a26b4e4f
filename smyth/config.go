// Package smyth implements Smyth 1997's clustering-by-mixtures method for
// one-dimensional time series: pairwise distances between sequences (via
// per-sequence default HMMs or edit distance), partitions of the sequence
// set for a range of mixture sizes k, and one trained HMM mixture per k.
// The pipeline fans its batches out over a fixed worker pool.
package smyth

import (
	goerrors "errors"

	"github.com/pkg/errors"
)

// DistFunc selects how pairwise sequence distances are computed.
type DistFunc string

const (
	// DistHMM is Rabiner's symmetrized log-likelihood distance between
	// the sequences' default models.
	DistHMM DistFunc = "hmm"

	// DistEdit is the sequence edit distance.
	DistEdit DistFunc = "editdistance"
)

// InitMethod selects how component HMMs are initialized.
type InitMethod string

const (
	// InitSmyth derives initial parameters by clustering the sequences'
	// own observation values (Smyth's "default" method).
	InitSmyth InitMethod = "smyth"

	// InitRandom is declared but not implemented.
	InitRandom InitMethod = "random"
)

// ClusterAlg selects the partitioning strategy.
type ClusterAlg string

const (
	// AlgHierarchical builds one complete-linkage tree and cuts it at
	// every requested k.
	AlgHierarchical ClusterAlg = "hierarchical"

	// AlgKMedoids runs an independent k-medoids clustering per k.
	AlgKMedoids ClusterAlg = "kmedoids"
)

// TrainMode selects how the mixture is trained.
type TrainMode string

const (
	// TrainCluster trains one HMM per cluster, then combines them into
	// the block-diagonal composite.
	TrainCluster TrainMode = "cluster"

	// TrainBlockDiag is declared but not implemented.
	TrainBlockDiag TrainMode = "blockdiag"
)

var (
	// ErrBadKRange indicates MinK > MaxK or a non-positive bound.
	ErrBadKRange = goerrors.New("smyth: invalid k range")

	// ErrNoSequences indicates an empty sequence set.
	ErrNoSequences = goerrors.New("smyth: no sequences")

	// ErrNoObservations indicates a sequence set with no observation
	// values at all.
	ErrNoObservations = goerrors.New("smyth: no observations")

	// ErrBadTargetM indicates a target state count below 1.
	ErrBadTargetM = goerrors.New("smyth: target state count must be >= 1")

	// ErrUnknownOption indicates an unrecognized strategy name.
	ErrUnknownOption = goerrors.New("smyth: unknown option")

	// ErrUnimplemented indicates a declared but unimplemented variant.
	ErrUnimplemented = goerrors.New("smyth: variant not implemented")

	// ErrEmptyCluster indicates a partition cluster with no sequences,
	// which cannot be trained on.
	ErrEmptyCluster = goerrors.New("smyth: empty cluster")

	// ErrPositiveLogLik indicates a log-likelihood above zero in the HMM
	// distance computation, which means the model went numerically
	// unstable.
	ErrPositiveLogLik = goerrors.New("smyth: log-likelihood must be <= 0")
)

const (
	// DefaultNPass is the number of k-medoids restart passes.
	DefaultNPass = 10

	// DefaultMaxIter caps the Baum-Welch iterations per training call.
	DefaultMaxIter = 20

	// DefaultBatchSize bounds the number of distance pairs submitted to
	// the pool at once.  Sub-batches are drained sequentially so the
	// in-flight task count stays bounded on large sequence sets.
	DefaultBatchSize = 500000
)

// Config carries the parameters of one orchestration run.  The zero value
// is not runnable; New applies defaults and fails fast on anything
// inconsistent, before any parallel work is submitted.
type Config struct {

	// TargetM is the desired number of states per component HMM.  The
	// initializer may produce fewer states when the data cannot support
	// that many (see DefaultTriple).
	TargetM int

	// MinK, MaxK bound the range of mixture sizes to model (inclusive).
	MinK, MaxK int

	DistFunc   DistFunc
	InitMethod InitMethod
	ClusterAlg ClusterAlg
	TrainMode  TrainMode

	// Workers is the pool size; <= 0 means one worker per CPU.
	Workers int

	// Seed drives every randomized step (k-means seeding, k-medoids
	// restarts).  Runs with the same seed, input and configuration
	// produce identical results.
	Seed int64

	// MaxIter caps Baum-Welch iterations; 0 means DefaultMaxIter.
	MaxIter int

	// NPass is the k-medoids restart count; 0 means DefaultNPass.
	NPass int

	// BatchSize is the distance sub-batch size; 0 means DefaultBatchSize.
	BatchSize int
}

// withDefaults fills the optional fields.
func (c Config) withDefaults() Config {
	if c.DistFunc == "" {
		c.DistFunc = DistHMM
	}
	if c.InitMethod == "" {
		c.InitMethod = InitSmyth
	}
	if c.ClusterAlg == "" {
		c.ClusterAlg = AlgHierarchical
	}
	if c.TrainMode == "" {
		c.TrainMode = TrainCluster
	}
	if c.MaxIter <= 0 {
		c.MaxIter = DefaultMaxIter
	}
	if c.NPass <= 0 {
		c.NPass = DefaultNPass
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}

// validate checks the configuration, including the declared-but-
// unimplemented variants, which are rejected rather than silently mapped
// to their implemented counterparts.
func (c Config) validate(nseq int) error {

	if nseq == 0 {
		return ErrNoSequences
	}
	if c.TargetM < 1 {
		return ErrBadTargetM
	}
	if c.MinK < 1 || c.MinK > c.MaxK {
		return ErrBadKRange
	}
	if c.MaxK > nseq {
		return errors.Wrapf(ErrBadKRange, "MaxK %d exceeds sequence count %d", c.MaxK, nseq)
	}

	switch c.DistFunc {
	case DistHMM, DistEdit:
	default:
		return errors.Wrapf(ErrUnknownOption, "distance function %q", c.DistFunc)
	}

	switch c.InitMethod {
	case InitSmyth:
	case InitRandom:
		return errors.Wrap(ErrUnimplemented, "init method \"random\"")
	default:
		return errors.Wrapf(ErrUnknownOption, "init method %q", c.InitMethod)
	}

	switch c.ClusterAlg {
	case AlgHierarchical, AlgKMedoids:
	default:
		return errors.Wrapf(ErrUnknownOption, "clustering algorithm %q", c.ClusterAlg)
	}

	switch c.TrainMode {
	case TrainCluster:
	case TrainBlockDiag:
		return errors.Wrap(ErrUnimplemented, "train mode \"blockdiag\"")
	default:
		return errors.Wrapf(ErrUnknownOption, "train mode %q", c.TrainMode)
	}

	return nil
}
