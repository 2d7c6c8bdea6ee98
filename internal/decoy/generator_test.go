package decoy

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"corromics/domain/core"
	"corromics/domain/omics"
)

func genomeFixture(t *testing.T) *omics.FeatureMatrix {
	t.Helper()
	features := []string{"g1", "g2", "g3"}
	samples := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	values := [][]float64{
		{1, 2, 3, 4, 5, 6, 7, 8},
		{10, 10, 20, 20, 30, 30, 40, 40},
		{5, 5, 5, 5, 5, 5, 5, 5},
	}
	m, err := omics.NewFeatureMatrix("genome", features, samples, values)
	require.NoError(t, err)
	return m
}

func sorted(row []float64) []float64 {
	out := append([]float64(nil), row...)
	sort.Float64s(out)
	return out
}

func TestGenerate_Deterministic(t *testing.T) {
	genome := genomeFixture(t)

	first, err := NewGenerator(DefaultSeed, nil).Generate(genome)
	require.NoError(t, err)
	second, err := NewGenerator(DefaultSeed, nil).Generate(genome)
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
	for i := 0; i < first.Rows(); i++ {
		for j := 0; j < first.Cols(); j++ {
			assert.Equal(t, math.Float64bits(first.At(i, j)), math.Float64bits(second.At(i, j)))
		}
	}

	other, err := NewGenerator(7, nil).Generate(genome)
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint(), other.Fingerprint())
}

func TestGenerate_KeepsShapeAndLabels(t *testing.T) {
	genome := genomeFixture(t)

	decoy, err := NewGenerator(DefaultSeed, nil).Generate(genome)
	require.NoError(t, err)

	assert.Equal(t, genome.Features(), decoy.Features())
	assert.Equal(t, genome.Samples(), decoy.Samples())
	assert.Equal(t, "genome_decoy", decoy.Name())
	// The source is not modified.
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, genome.Row(0))
}

func TestPermute_PreservesRowMultiset(t *testing.T) {
	genome := genomeFixture(t)

	permuted, err := NewGenerator(DefaultSeed, nil).Permute(genome)
	require.NoError(t, err)

	for i := 0; i < genome.Rows(); i++ {
		assert.Equal(t, sorted(genome.Row(i)), sorted(permuted.Row(i)), "row %s", genome.Feature(i))
	}
}

func TestGenerate_NoiseIsAddedAfterPermutation(t *testing.T) {
	genome := genomeFixture(t)
	g := NewGenerator(DefaultSeed, nil)

	permuted, err := g.Permute(genome)
	require.NoError(t, err)
	decoy, err := g.Generate(genome)
	require.NoError(t, err)

	for i := 0; i < genome.Rows(); i++ {
		for j := 0; j < genome.Cols(); j++ {
			d := decoy.At(i, j) - permuted.At(i, j)
			assert.Less(t, math.Abs(d), 10*NoiseSigma)
		}
	}

	// The constant row gains variance only through noise.
	_, v := stat.MeanVariance(decoy.Row(2), nil)
	assert.Greater(t, v, 0.0)
}

func TestCombined(t *testing.T) {
	genome := genomeFixture(t)
	metabolome, err := omics.NewFeatureMatrix("metabolome", []string{"m1", "m2"},
		[]string{"s8", "s1", "s2", "s3"},
		[][]float64{{1, 2, 3, 4}, {4, 3, 2, 1}})
	require.NoError(t, err)

	combined, decoy, err := NewGenerator(DefaultSeed, nil).Combined(metabolome, genome)
	require.NoError(t, err)
	assert.Equal(t, 5, combined.Rows())
	assert.Equal(t, []string{"s8", "s1", "s2", "s3"}, combined.Samples())
	assert.Equal(t, genome.Rows(), decoy.Rows())

	disjoint, err := omics.NewFeatureMatrix("metabolome", []string{"m1"}, []string{"x"}, [][]float64{{1}})
	require.NoError(t, err)
	_, _, err = NewGenerator(DefaultSeed, nil).Combined(disjoint, genome)
	assert.True(t, core.IsAlignmentError(err))
}
