package smyth

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/japplebaum/thesis/hmmlib"
	"github.com/japplebaum/thesis/pool"
)

// Mixture is the modeling result for one value of k: the trained
// per-cluster triples in cluster order, the cluster sizes and per-cluster
// sequence lengths, and the block-diagonal composite representing the
// whole mixture as a single HMM.
type Mixture struct {
	K            int
	Triples      []hmmlib.Triple
	ClusterSizes []int
	SeqLens      [][]int
	Composite    hmmlib.Triple
}

// trainTask is one cluster to train, tagged with its (k, cluster) address
// so the flattened batch can be reassembled positionally no matter how
// the results come back.
type trainTask struct {
	k, cluster int

	// position in the flattened batch; drives the task's rng seed
	batch int

	seqIdx []int
}

// trainComponents trains one HMM per cluster for every requested k.  The
// (cluster, k) pairs across all k values are flattened into a single
// batch so clusters belonging to different k train concurrently, then the
// results are reassembled per k and composed into the block-diagonal
// mixtures.
func (hc *HMMCluster) trainComponents(p *pool.Pool) error {

	var tasks []trainTask
	for _, k := range hc.kValues {
		for c, idxs := range hc.Partitions[k] {
			if len(idxs) == 0 {
				return errors.Wrapf(ErrEmptyCluster, "k=%d cluster=%d", k, c)
			}
			tasks = append(tasks, trainTask{k: k, cluster: c, batch: len(tasks), seqIdx: idxs})
		}
	}

	hc.log.WithField("components", len(tasks)).Info("training components on clusters")
	triples, err := pool.Map(p, tasks, hc.trainComponent)
	if err != nil {
		return err
	}

	for _, k := range hc.kValues {
		nclust := len(hc.Partitions[k])
		hc.Mixtures[k] = &Mixture{
			K:            k,
			Triples:      make([]hmmlib.Triple, nclust),
			ClusterSizes: make([]int, nclust),
			SeqLens:      make([][]int, nclust),
		}
	}

	// Place each result by its (k, cluster) key rather than walking the
	// flat batch with a counter.
	for ti, task := range tasks {
		mix := hc.Mixtures[task.k]
		mix.Triples[task.cluster] = triples[ti]
		mix.ClusterSizes[task.cluster] = len(task.seqIdx)
		lens := make([]int, len(task.seqIdx))
		for q, si := range task.seqIdx {
			lens[q] = len(hc.S[si])
		}
		mix.SeqLens[task.cluster] = lens
	}

	for _, k := range hc.kValues {
		mix := hc.Mixtures[k]
		comp, err := hmmlib.Composite(mix.Triples, mix.ClusterSizes)
		if err != nil {
			return errors.Wrapf(err, "composing mixture for k=%d", k)
		}
		mix.Composite = comp
	}

	return nil
}

// trainComponent trains the HMM for one cluster: Smyth's default
// initialization on the cluster's sequences, then one further Baum-Welch
// refinement pass.  The refined emissions keep the EmissionFloor bound so
// every trained triple stays evaluable.
func (hc *HMMCluster) trainComponent(t trainTask) (hmmlib.Triple, error) {

	seqs := make([][]float64, len(t.seqIdx))
	for q, si := range t.seqIdx {
		seqs[q] = hc.S[si]
	}

	rng := rand.New(rand.NewSource(hc.cfg.Seed + int64(7000003+t.batch)))
	tri, err := DefaultTriple(seqs, hc.cfg.TargetM, hc.cfg.MaxIter, rng)
	if err != nil {
		return hmmlib.Triple{}, errors.Wrapf(err, "initializing k=%d cluster=%d", t.k, t.cluster)
	}

	model, err := hmmlib.FromTriple(tri)
	if err != nil {
		return hmmlib.Triple{}, errors.Wrapf(err, "constructing k=%d cluster=%d", t.k, t.cluster)
	}
	if err := model.Fit(seqs, hc.cfg.MaxIter); err != nil {
		return hmmlib.Triple{}, errors.Wrapf(err, "refining k=%d cluster=%d", t.k, t.cluster)
	}

	out := model.Triple()
	for i := range out.Emit {
		if out.Emit[i].Std < EmissionFloor {
			out.Emit[i].Std = EmissionFloor
		}
	}

	return out, nil
}
