package omics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corromics/domain/core"
)

func mustMatrix(t *testing.T, name string, features, samples []string, values [][]float64) *FeatureMatrix {
	t.Helper()
	m, err := NewFeatureMatrix(name, features, samples, values)
	require.NoError(t, err)
	return m
}

func TestNewFeatureMatrix_Validation(t *testing.T) {
	samples := []string{"s1", "s2"}

	tests := []struct {
		name     string
		features []string
		samples  []string
		values   [][]float64
	}{
		{"no features", nil, samples, nil},
		{"no samples", []string{"f1"}, nil, [][]float64{{}}},
		{"ragged row", []string{"f1", "f2"}, samples, [][]float64{{1, 2}, {3}}},
		{"row count mismatch", []string{"f1"}, samples, [][]float64{{1, 2}, {3, 4}}},
		{"duplicate feature", []string{"f1", "f1"}, samples, [][]float64{{1, 2}, {3, 4}}},
		{"duplicate sample", []string{"f1"}, []string{"s1", "s1"}, [][]float64{{1, 2}}},
		{"blank label", []string{" "}, samples, [][]float64{{1, 2}}},
		{"missing value", []string{"f1"}, samples, [][]float64{{1, math.NaN()}}},
		{"infinite value", []string{"f1"}, samples, [][]float64{{math.Inf(1), 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFeatureMatrix("m", tt.features, tt.samples, tt.values)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidMatrix)
		})
	}
}

func TestFeatureMatrix_CopiesLabels(t *testing.T) {
	features := []string{"f1", "f2"}
	m := mustMatrix(t, "m", features, []string{"s1", "s2"}, [][]float64{{1, 2}, {3, 4}})

	features[0] = "changed"
	got := m.Features()
	got[1] = "changed"

	assert.Equal(t, []string{"f1", "f2"}, m.Features())
	assert.Equal(t, []float64{3, 4}, m.Row(1))
}

func TestFeatureMatrix_SelectSamples(t *testing.T) {
	m := mustMatrix(t, "m", []string{"f1", "f2"}, []string{"s1", "s2", "s3"}, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})

	sub, err := m.SelectSamples([]string{"s3", "s1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s1"}, sub.Samples())
	assert.Equal(t, []float64{3, 1}, sub.Row(0))
	assert.Equal(t, []float64{6, 4}, sub.Row(1))

	_, err = m.SelectSamples([]string{"s9"})
	assert.ErrorIs(t, err, core.ErrInvalidMatrix)

	_, err = m.SelectSamples(nil)
	assert.ErrorIs(t, err, core.ErrInvalidMatrix)
}

func TestFeatureMatrix_DropZeroRows(t *testing.T) {
	m := mustMatrix(t, "genome", []string{"a", "b", "c"}, []string{"s1", "s2"}, [][]float64{
		{0, 0},
		{1, 0},
		{0, 0},
	})

	kept, dropped := m.DropZeroRows()
	require.NotNil(t, kept)
	assert.Equal(t, []string{"a", "c"}, dropped)
	assert.Equal(t, []string{"b"}, kept.Features())

	same, none := kept.DropZeroRows()
	assert.Same(t, kept, same)
	assert.Empty(t, none)

	allZero := mustMatrix(t, "genome", []string{"z"}, []string{"s1"}, [][]float64{{0}})
	gone, dropped := allZero.DropZeroRows()
	assert.Nil(t, gone)
	assert.Equal(t, []string{"z"}, dropped)
}

func TestFeatureMatrix_Fingerprint(t *testing.T) {
	m := mustMatrix(t, "m", []string{"f1"}, []string{"s1", "s2"}, [][]float64{{1, 2}})
	clone := m.Clone()
	assert.Equal(t, m.Fingerprint(), clone.Fingerprint())

	other := mustMatrix(t, "m", []string{"f1"}, []string{"s1", "s2"}, [][]float64{{1, 2.5}})
	assert.NotEqual(t, m.Fingerprint(), other.Fingerprint())
}

func TestFeatureMatrix_Summarize(t *testing.T) {
	m := mustMatrix(t, "genome", []string{"flat", "zero", "varied"}, []string{"s1", "s2", "s3", "s4"}, [][]float64{
		{5, 5, 5, 5},
		{0, 0, 0, 0},
		{1, 2, 3, 4},
	})

	p := m.ProfileRow(2)
	assert.Equal(t, "varied", p.Feature)
	assert.InDelta(t, 2.5, p.Mean, 1e-12)
	assert.InDelta(t, 2.5, p.Median, 1e-12)
	assert.Equal(t, 1.0, p.Min)
	assert.Equal(t, 4.0, p.Max)
	assert.False(t, p.ZeroVariance)

	s := m.Summarize()
	assert.Equal(t, 3, s.Features)
	assert.Equal(t, 4, s.Samples)
	assert.Equal(t, 2, s.ZeroVarianceRows)
	assert.Equal(t, 1, s.AllZeroRows)
	assert.InDelta(t, 2.5, s.MedianFeatureMean, 1e-12)
}
