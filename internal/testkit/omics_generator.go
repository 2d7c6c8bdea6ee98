package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"corromics/domain/omics"
)

// OmicsGeneratorConfig configures the synthetic metabolome/genome pair.
type OmicsGeneratorConfig struct {
	Metabolites      int     `json:"metabolites"`
	GenomicFeatures  int     `json:"genomic_features"`
	Samples          int     `json:"samples"`
	LinkedFraction   float64 `json:"linked_fraction"`
	NoiseLevel       float64 `json:"noise_level"`
	ZeroFeatures     int     `json:"zero_features"`
	ConstantFeatures int     `json:"constant_features"`
	Seed             int64   `json:"seed"`
}

// DefaultOmicsConfig returns a small pair with some planted associations.
func DefaultOmicsConfig() OmicsGeneratorConfig {
	return OmicsGeneratorConfig{
		Metabolites:     40,
		GenomicFeatures: 8,
		Samples:         24,
		LinkedFraction:  0.25,
		NoiseLevel:      0.2,
		Seed:            42,
	}
}

// Link is a planted (metabolite, genomic feature) association.
type Link struct {
	Metabolite string
	Feature    string
	Negative   bool
}

// OmicsDataGenerator builds metabolome and genome matrices over the same
// samples. A fraction of genomic features drive one metabolite each, either
// positively or negatively; the rest are independent abundances.
type OmicsDataGenerator struct {
	config OmicsGeneratorConfig
	rng    *rand.Rand
	links  []Link
}

// NewOmicsDataGenerator creates a generator
func NewOmicsDataGenerator(config OmicsGeneratorConfig) *OmicsDataGenerator {
	return &OmicsDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Links returns the associations planted by the last Generate call.
func (g *OmicsDataGenerator) Links() []Link { return append([]Link(nil), g.links...) }

// Generate returns (metabolome, genome).
func (g *OmicsDataGenerator) Generate() (*omics.FeatureMatrix, *omics.FeatureMatrix, error) {
	c := g.config
	special := c.ZeroFeatures + c.ConstantFeatures
	if c.Metabolites < 1 || c.GenomicFeatures < 1 || c.Samples < 2 || special > c.GenomicFeatures {
		return nil, nil, fmt.Errorf("invalid generator config: %+v", c)
	}
	g.links = nil

	samples := make([]string, c.Samples)
	for j := range samples {
		samples[j] = fmt.Sprintf("S%03d", j+1)
	}

	genomeIDs := make([]string, c.GenomicFeatures)
	genome := make([][]float64, c.GenomicFeatures)
	for i := range genome {
		genomeIDs[i] = fmt.Sprintf("ASV_%04d", i+1)
		row := make([]float64, c.Samples)
		switch {
		case i < c.ZeroFeatures:
		case i < special:
			for j := range row {
				row[j] = 5
			}
		default:
			for j := range row {
				row[j] = math.Round(g.rng.ExpFloat64() * 100)
			}
			row[g.rng.Intn(c.Samples)]++
		}
		genome[i] = row
	}

	metaboliteIDs := make([]string, c.Metabolites)
	metabolome := make([][]float64, c.Metabolites)
	for i := range metabolome {
		metaboliteIDs[i] = fmt.Sprintf("%d", 1000+i)
		row := make([]float64, c.Samples)
		for j := range row {
			row[j] = 1e4 * (1 + g.rng.Float64())
		}
		metabolome[i] = row
	}

	linkable := c.GenomicFeatures - special
	nLinks := int(math.Round(float64(linkable) * c.LinkedFraction))
	for k := 0; k < nLinks && k < c.Metabolites; k++ {
		src := genome[special+k]
		negative := g.rng.Intn(2) == 0
		mean, spread := meanSpread(src)
		for j := range src {
			z := (src[j] - mean) / spread
			if negative {
				z = -z
			}
			metabolome[k][j] = 1e4 * (2 + z + c.NoiseLevel*g.rng.NormFloat64())
		}
		g.links = append(g.links, Link{
			Metabolite: metaboliteIDs[k],
			Feature:    genomeIDs[special+k],
			Negative:   negative,
		})
	}

	m, err := omics.NewFeatureMatrix("metabolome", metaboliteIDs, samples, metabolome)
	if err != nil {
		return nil, nil, err
	}
	gm, err := omics.NewFeatureMatrix("genome", genomeIDs, samples, genome)
	if err != nil {
		return nil, nil, err
	}
	return m, gm, nil
}

func meanSpread(x []float64) (float64, float64) {
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	var ss float64
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(ss / float64(len(x)))
	if sd == 0 {
		sd = 1
	}
	return mean, sd
}
