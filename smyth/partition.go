package smyth

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/japplebaum/thesis/cluster"
	"github.com/japplebaum/thesis/pool"
)

// partitionSequences derives one labeling and partition per requested k
// from the distance matrix, with the configured strategy.
func (hc *HMMCluster) partitionSequences(p *pool.Pool) error {

	switch hc.cfg.ClusterAlg {

	case AlgHierarchical:
		// The tree is built once; cutting it per k is cheap.
		tree, err := cluster.BuildTree(hc.DistMatrix)
		if err != nil {
			return errors.Wrap(err, "building linkage tree")
		}
		for _, k := range hc.kValues {
			labels, err := tree.Cut(k)
			if err != nil {
				return errors.Wrapf(err, "cutting tree at k=%d", k)
			}
			hc.storePartition(k, labels)
		}

	case AlgKMedoids:
		// Each k's clustering is an independent task.
		results, err := pool.Map(p, hc.kValues, func(k int) ([]int, error) {
			rng := rand.New(rand.NewSource(hc.cfg.Seed + int64(1000003*k)))
			labels, toterr, nfound, err := cluster.KMedoids(hc.DistMatrix, k, hc.cfg.NPass, rng)
			if err != nil {
				return nil, errors.Wrapf(err, "k-medoids at k=%d", k)
			}
			hc.log.WithFields(map[string]interface{}{
				"k": k, "error": toterr, "nfound": nfound,
			}).Debug("k-medoids pass done")
			return labels, nil
		})
		if err != nil {
			return err
		}
		for q, k := range hc.kValues {
			hc.storePartition(k, results[q])
		}

	default:
		return errors.Wrapf(ErrUnknownOption, "clustering algorithm %q", hc.cfg.ClusterAlg)
	}

	return nil
}

// storePartition records the labeling for k and groups the sequence
// indices by label, preserving the original sequence order within each
// group.  Index identity is the join key: partitions hold indices into
// the sequence set, never copies of the sequences.
func (hc *HMMCluster) storePartition(k int, labels []int) {

	hc.Labelings[k] = labels

	ngroup := 0
	for _, l := range labels {
		if l+1 > ngroup {
			ngroup = l + 1
		}
	}

	part := make([][]int, ngroup)
	for i, l := range labels {
		part[l] = append(part[l], i)
	}
	hc.Partitions[k] = part
}
