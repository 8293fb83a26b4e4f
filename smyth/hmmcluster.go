package smyth

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/japplebaum/thesis/cluster"
	"github.com/japplebaum/thesis/hmmlib"
	"github.com/japplebaum/thesis/pool"
)

// HMMCluster orchestrates one modeling run: pairwise distances over the
// sequence set, a partition per k in [MinK, MaxK], and one trained HMM
// mixture per k.  All derived state is produced by Run and never mutated
// afterwards; a fresh run replaces it wholesale.
type HMMCluster struct {
	cfg Config

	// The sequence set.  Sequences are owned by the caller and only read.
	S [][]float64
	n int

	kValues []int

	// InitTriples holds the per-sequence default models built for the
	// HMM distance (nil for the edit distance).
	InitTriples []hmmlib.Triple

	// DistMatrix is the condensed pairwise distance matrix.
	DistMatrix *cluster.DistMatrix

	// Labelings and Partitions map each k to its label assignment and to
	// the per-cluster sequence index groups.
	Labelings  map[int][]int
	Partitions map[int][][]int

	// Mixtures maps each k to its modeling result.
	Mixtures map[int]*Mixture

	// Times records the wall-clock duration of each pipeline stage.
	Times map[string]time.Duration

	log *logrus.Entry
}

// New validates the configuration against the sequence set and returns an
// orchestrator ready to run.  Validation happens here, before any
// parallel work is submitted.
func New(seqs [][]float64, cfg Config) (*HMMCluster, error) {

	cfg = cfg.withDefaults()
	if err := cfg.validate(len(seqs)); err != nil {
		return nil, err
	}
	for i, s := range seqs {
		if len(s) == 0 {
			return nil, errors.Wrapf(ErrNoObservations, "sequence %d", i)
		}
	}

	kValues := make([]int, 0, cfg.MaxK-cfg.MinK+1)
	for k := cfg.MinK; k <= cfg.MaxK; k++ {
		kValues = append(kValues, k)
	}

	return &HMMCluster{
		cfg:        cfg,
		S:          seqs,
		n:          len(seqs),
		kValues:    kValues,
		Labelings:  make(map[int][]int),
		Partitions: make(map[int][][]int),
		Mixtures:   make(map[int]*Mixture),
		Times:      make(map[string]time.Duration),
		log:        logrus.WithField("component", "smyth"),
	}, nil
}

// KValues returns the modeled k range in ascending order.
func (hc *HMMCluster) KValues() []int {
	return hc.kValues
}

// Run executes the pipeline once: distances, then partitions, then
// per-cluster training and composition.  Each stage is a barrier; the
// next stage starts only after the previous stage's full result set is
// collected.  The worker pool is acquired here and released when Run
// returns, on success or failure.  Any task failure aborts its whole
// batch; no partial per-k results are produced.
func (hc *HMMCluster) Run() error {

	hc.log = logrus.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"workers": hc.cfg.Workers,
	})

	p := pool.New(hc.cfg.Workers)
	defer p.Release()

	total := time.Now()

	dm, err := hc.distanceMatrix(p)
	if err != nil {
		return errors.Wrap(err, "distance stage")
	}
	hc.DistMatrix = dm

	hc.log.WithField("alg", hc.cfg.ClusterAlg).Info("partitioning sequences")
	start := time.Now()
	if err := hc.partitionSequences(p); err != nil {
		return errors.Wrap(err, "partition stage")
	}
	hc.Times["clustering"] = time.Since(start)

	start = time.Now()
	if err := hc.trainComponents(p); err != nil {
		return errors.Wrap(err, "modeling stage")
	}
	hc.Times["modeling"] = time.Since(start)

	hc.Times["total"] = time.Since(total)
	hc.log.WithField("elapsed", hc.Times["total"]).Info("run complete")

	return nil
}
