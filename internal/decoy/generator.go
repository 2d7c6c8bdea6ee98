// Package decoy builds the null counterpart of a genomic feature matrix: each
// row is shuffled across its own samples, then Gaussian noise is added.
package decoy

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"corromics/domain/omics"
	"corromics/internal/logging"
)

const (
	// DefaultSeed reproduces the reference decoys.
	DefaultSeed int64 = 42

	// NoiseSigma is the standard deviation of the additive noise.
	NoiseSigma = 0.1

	// pcgStream fixes the PCG stream so the seed alone selects the sequence.
	pcgStream uint64 = 0x636f72726f6d6963
)

// Generator produces decoy matrices from an explicit seed. It holds no random
// state between calls: every call starts a fresh source from the seed.
type Generator struct {
	seed   int64
	logger *zap.Logger
}

// NewGenerator creates a generator for the given seed.
func NewGenerator(seed int64, logger *zap.Logger) *Generator {
	return &Generator{seed: seed, logger: logging.OrNop(logger).Named("decoy")}
}

func (g *Generator) Seed() int64 { return g.seed }

func (g *Generator) source() *rand.PCG {
	return rand.NewPCG(uint64(g.seed), pcgStream)
}

// Permute returns genome with every row shuffled independently, using the same
// draws Generate makes before adding noise.
func (g *Generator) Permute(genome *omics.FeatureMatrix) (*omics.FeatureMatrix, error) {
	data := genome.Dense()
	permuteRows(data, rand.New(g.source()))
	return genome.WithData(decoyName(genome), data)
}

// Generate returns the decoy genomic matrix: a per-row permutation followed by
// one matrix-shaped draw of N(0, NoiseSigma) noise. Identical seed and input
// give a bit-identical result.
func (g *Generator) Generate(genome *omics.FeatureMatrix) (*omics.FeatureMatrix, error) {
	start := time.Now()
	src := g.source()

	data := genome.Dense()
	permuteRows(data, rand.New(src))
	addNoise(data, distuv.Normal{Mu: 0, Sigma: NoiseSigma, Src: src})

	decoy, err := genome.WithData(decoyName(genome), data)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("decoy matrix generated",
		zap.Int64("seed", g.seed),
		zap.Int("rows", decoy.Rows()),
		zap.Int("cols", decoy.Cols()),
		zap.Duration("elapsed", time.Since(start)))
	return decoy, nil
}

// Combined generates the decoy genome and stacks it under the metabolome.
func (g *Generator) Combined(metabolome, genome *omics.FeatureMatrix) (*omics.CombinedMatrix, *omics.FeatureMatrix, error) {
	decoy, err := g.Generate(genome)
	if err != nil {
		return nil, nil, err
	}
	combined, err := omics.Combine(metabolome, decoy)
	if err != nil {
		return nil, nil, err
	}
	return combined, decoy, nil
}

func permuteRows(data *mat.Dense, rng *rand.Rand) {
	r, _ := data.Dims()
	for i := 0; i < r; i++ {
		row := data.RawRowView(i)
		rng.Shuffle(len(row), func(a, b int) { row[a], row[b] = row[b], row[a] })
	}
}

func addNoise(data *mat.Dense, noise distuv.Normal) {
	r, _ := data.Dims()
	for i := 0; i < r; i++ {
		row := data.RawRowView(i)
		for j := range row {
			row[j] += noise.Rand()
		}
	}
}

func decoyName(genome *omics.FeatureMatrix) string {
	return genome.Name() + "_decoy"
}
