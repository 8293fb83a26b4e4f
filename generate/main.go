// Command generate writes a synthetic sequence set for exercising the
// mixture pipeline: Smyth's two-regime example, n sequences per regime
// drawn from two-state Gaussian HMMs that differ in their transition
// structure and emission levels.  The set is written as a gzip-compressed
// gob file that the estimate command reads back.
package main

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/japplebaum/thesis/hmmlib"
)

var (
	nPerGroup int
	seqLen    int
	seed      uint64
	outname   string
)

var rootCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic two-regime sequence set",
	RunE: func(cmd *cobra.Command, args []string) error {

		if outname == "" {
			return fmt.Errorf("'outname' is required")
		}

		rng := exprand.New(exprand.NewSource(seed))

		regimeA := hmmlib.Triple{
			Trans: []float64{0.6, 0.4, 0.4, 0.6},
			Emit:  []hmmlib.Gaussian{{Mean: 0, Std: 1}, {Mean: 3, Std: 1}},
			Init:  []float64{0.5, 0.5},
		}
		regimeB := hmmlib.Triple{
			Trans: []float64{0.4, 0.6, 0.6, 0.4},
			Emit:  []hmmlib.Gaussian{{Mean: 3, Std: 1}, {Mean: 6, Std: 1}},
			Init:  []float64{0.5, 0.5},
		}

		seqs := make([][]float64, 0, 2*nPerGroup)
		for i := 0; i < nPerGroup; i++ {
			seqs = append(seqs, sampleSequence(regimeA, seqLen, rng))
		}
		for i := 0; i < nPerGroup; i++ {
			seqs = append(seqs, sampleSequence(regimeB, seqLen, rng))
		}

		return writeSequences(outname, seqs)
	},
}

// sampleSequence draws one observation sequence from the HMM triple:
// a state walk over the transition matrix with Gaussian emissions.
func sampleSequence(tri hmmlib.Triple, length int, rng *exprand.Rand) []float64 {

	m := tri.NState()
	seq := make([]float64, length)

	st := drawState(tri.Init, rng)
	for t := 0; t < length; t++ {
		dist := distuv.Normal{
			Mu:    tri.Emit[st].Mean,
			Sigma: tri.Emit[st].Std,
			Src:   rng,
		}
		seq[t] = dist.Rand()
		st = drawState(tri.Trans[st*m:(st+1)*m], rng)
	}

	return seq
}

// drawState samples an index from the given probability row.
func drawState(probs []float64, rng *exprand.Rand) int {

	r := rng.Float64()
	var cum float64
	for j, p := range probs {
		cum += p
		if r < cum {
			return j
		}
	}

	return len(probs) - 1
}

// writeSequences writes the sequence set as a gzip-compressed gob file.
func writeSequences(fname string, seqs [][]float64) error {

	fid, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer fid.Close()

	gid := gzip.NewWriter(fid)
	defer gid.Close()

	return gob.NewEncoder(gid).Encode(seqs)
}

func main() {

	rootCmd.Flags().IntVar(&nPerGroup, "npergroup", 20, "Sequences per regime")
	rootCmd.Flags().IntVar(&seqLen, "length", 200, "Observations per sequence")
	rootCmd.Flags().Uint64Var(&seed, "seed", 11, "Random seed")
	rootCmd.Flags().StringVar(&outname, "outname", "", "Output file name")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
