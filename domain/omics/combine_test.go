package omics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corromics/domain/core"
)

func TestCombine_AlignsOnSharedSamples(t *testing.T) {
	metabolome := mustMatrix(t, "metabolome", []string{"m1", "m2"}, []string{"s1", "s2", "s3", "s4"}, [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
	})
	genome := mustMatrix(t, "genome", []string{"g1"}, []string{"s4", "s9", "s2", "s1"}, [][]float64{
		{40, 90, 20, 10},
	})

	combined, err := Combine(metabolome, genome)
	require.NoError(t, err)

	// Order follows the metabolome columns.
	assert.Equal(t, []string{"s1", "s2", "s4"}, combined.Samples())
	assert.Equal(t, 3, combined.Rows())
	assert.Equal(t, 2, combined.MetaboliteRows())
	assert.Equal(t, 1, combined.GenomicRows())

	assert.Equal(t, []float64{1, 2, 4}, combined.RawRow(0))
	assert.Equal(t, []float64{5, 6, 8}, combined.RawRow(1))
	assert.Equal(t, []float64{10, 20, 40}, combined.RawRow(2))

	assert.Equal(t, CombinedRow{Index: 2, FeatureID: "g1", Assay: AssayGenome}, combined.Row(2))
	assert.Equal(t, "0", combined.RowLabel(0))
}

func TestCombine_KeepsDuplicateIDsAcrossAssays(t *testing.T) {
	metabolome := mustMatrix(t, "metabolome", []string{"1"}, []string{"s1", "s2"}, [][]float64{{1, 2}})
	genome := mustMatrix(t, "genome", []string{"1"}, []string{"s1", "s2"}, [][]float64{{3, 4}})

	combined, err := Combine(metabolome, genome)
	require.NoError(t, err)

	labels := map[string]bool{}
	for i := 0; i < combined.Rows(); i++ {
		labels[combined.RowLabel(i)] = true
	}
	assert.Len(t, labels, 2, "row labels must stay unique when feature ids collide")
}

func TestCombine_DisjointSamples(t *testing.T) {
	metabolome := mustMatrix(t, "metabolome", []string{"m1"}, []string{"a", "b"}, [][]float64{{1, 2}})
	genome := mustMatrix(t, "genome", []string{"g1"}, []string{"c", "d"}, [][]float64{{3, 4}})

	combined, err := Combine(metabolome, genome)
	assert.Nil(t, combined)
	require.Error(t, err)
	assert.True(t, core.IsAlignmentError(err))
}

func TestCombine_Fingerprint(t *testing.T) {
	metabolome := mustMatrix(t, "metabolome", []string{"m1"}, []string{"a", "b"}, [][]float64{{1, 2}})
	genome := mustMatrix(t, "genome", []string{"g1"}, []string{"a", "b"}, [][]float64{{3, 4}})

	first, err := Combine(metabolome, genome)
	require.NoError(t, err)
	second, err := Combine(metabolome, genome)
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
}
