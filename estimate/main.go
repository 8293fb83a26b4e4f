// Command estimate runs the full mixture pipeline over a sequence set:
// pairwise distances, one partition per k in the requested range, and one
// trained HMM mixture per k.  The per-k results are written as a
// gzip-compressed gob file.  All modeling parameters can come from flags,
// a YAML config file, or both (flags win).
package main

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/japplebaum/thesis/smyth"
)

// results is the on-disk layout of one completed run.
type results struct {
	KValues  []int
	Mixtures map[int]*smyth.Mixture
	Times    map[string]time.Duration
}

var (
	seqfile  string
	outname  string
	cfgfile  string
	loglevel string
)

var rootCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Fit HMM mixtures to a sequence set for a range of k",
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {

	if seqfile == "" || outname == "" {
		return fmt.Errorf("'seqfile' and 'outname' are required")
	}

	if cfgfile != "" {
		viper.SetConfigFile(cfgfile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}

	level, err := logrus.ParseLevel(loglevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	seqs, err := readSequences(seqfile)
	if err != nil {
		return err
	}

	cfg := smyth.Config{
		TargetM:    viper.GetInt("target_m"),
		MinK:       viper.GetInt("min_k"),
		MaxK:       viper.GetInt("max_k"),
		DistFunc:   smyth.DistFunc(viper.GetString("dist_func")),
		InitMethod: smyth.InitMethod(viper.GetString("init_method")),
		ClusterAlg: smyth.ClusterAlg(viper.GetString("cluster_alg")),
		TrainMode:  smyth.TrainMode(viper.GetString("train_mode")),
		Workers:    viper.GetInt("workers"),
		Seed:       viper.GetInt64("seed"),
		MaxIter:    viper.GetInt("max_iter"),
		NPass:      viper.GetInt("npass"),
		BatchSize:  viper.GetInt("batch_size"),
	}

	hc, err := smyth.New(seqs, cfg)
	if err != nil {
		return err
	}
	if err := hc.Run(); err != nil {
		return err
	}

	for stage, d := range hc.Times {
		logrus.WithFields(logrus.Fields{"stage": stage, "elapsed": d}).Info("stage timing")
	}

	return writeResults(outname, &results{
		KValues:  hc.KValues(),
		Mixtures: hc.Mixtures,
		Times:    hc.Times,
	})
}

// readSequences reads a gzip-compressed gob sequence set, as written by
// the generate command.
func readSequences(fname string) ([][]float64, error) {

	fid, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	gid, err := gzip.NewReader(fid)
	if err != nil {
		return nil, err
	}
	defer gid.Close()

	var seqs [][]float64
	if err := gob.NewDecoder(gid).Decode(&seqs); err != nil {
		return nil, err
	}

	return seqs, nil
}

// writeResults writes the per-k mixtures as a gzip-compressed gob file.
func writeResults(fname string, res *results) error {

	fid, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer fid.Close()

	gid := gzip.NewWriter(fid)
	defer gid.Close()

	return gob.NewEncoder(gid).Encode(res)
}

func main() {

	flags := rootCmd.Flags()
	flags.StringVar(&seqfile, "seqfile", "", "The sequence data file")
	flags.StringVar(&outname, "outname", "", "Output file name")
	flags.StringVar(&cfgfile, "config", "", "Optional YAML config file")
	flags.StringVar(&loglevel, "loglevel", "info", "Log level")

	flags.Int("target-m", 2, "Target states per component HMM")
	flags.Int("min-k", 2, "Minimum number of mixture components")
	flags.Int("max-k", 2, "Maximum number of mixture components")
	flags.String("dist-func", string(smyth.DistHMM), "Distance function: hmm or editdistance")
	flags.String("init-method", string(smyth.InitSmyth), "HMM initialization method")
	flags.String("cluster-alg", string(smyth.AlgHierarchical), "Clustering algorithm: hierarchical or kmedoids")
	flags.String("train-mode", string(smyth.TrainCluster), "Training mode")
	flags.Int("workers", 0, "Worker pool size (0 = all CPUs)")
	flags.Int64("seed", 1, "Random seed")
	flags.Int("max-iter", smyth.DefaultMaxIter, "Baum-Welch iteration cap")
	flags.Int("npass", smyth.DefaultNPass, "K-medoids restart passes")
	flags.Int("batch-size", smyth.DefaultBatchSize, "Distance pair sub-batch size")

	for cfgKey, flagName := range map[string]string{
		"target_m":    "target-m",
		"min_k":       "min-k",
		"max_k":       "max-k",
		"dist_func":   "dist-func",
		"init_method": "init-method",
		"cluster_alg": "cluster-alg",
		"train_mode":  "train-mode",
		"workers":     "workers",
		"seed":        "seed",
		"max_iter":    "max-iter",
		"npass":       "npass",
		"batch_size":  "batch-size",
	} {
		if err := viper.BindPFlag(cfgKey, flags.Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
