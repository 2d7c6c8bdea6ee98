package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corromics/domain/core"
)

func TestNumericColumns(t *testing.T) {
	table := NewTable(
		[]string{"id", "label", "s1", "s2", "s3"},
		[][]string{
			{"f1", "x", "1", "NA", "2"},
			{"f2", "y", "3", "4", "5e-1"},
		})

	cols, complete := table.NumericColumns("id")
	assert.Equal(t, []string{"s1", "s2", "s3"}, cols)
	assert.Equal(t, []bool{true, false, true}, complete)
}

func TestFeatureMatrixAutoSamples(t *testing.T) {
	table := NewTable(
		[]string{"id", "s1", "s2", "s3"},
		[][]string{
			{"f1", "1", "", "2"},
			{"f2", "3", "4", "0.5"},
		})

	fm, err := table.FeatureMatrix("metabolome", "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, fm.Features())
	assert.Equal(t, []string{"s1", "s3"}, fm.Samples())
	assert.Equal(t, []float64{3, 0.5}, fm.Row(1))
}

func TestFeatureMatrixExplicitSamples(t *testing.T) {
	table := NewTable(
		[]string{"name", "id", "s1", "s2"},
		[][]string{
			{"a", "f1", "1", ""},
			{"b", "f2", "3", "4"},
		})

	fm, err := table.FeatureMatrix("genome", "id", []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, fm.Features())

	_, err = table.FeatureMatrix("genome", "id", []string{"s2"})
	require.Error(t, err)
	assert.True(t, core.IsInvalidMatrix(err))

	_, err = table.FeatureMatrix("genome", "id", []string{"nope"})
	assert.True(t, core.IsInvalidMatrix(err))

	_, err = table.FeatureMatrix("genome", "missing", nil)
	assert.True(t, core.IsInvalidMatrix(err))
}

func TestFeatureMatrixNoNumericColumns(t *testing.T) {
	table := NewTable([]string{"id", "label"}, [][]string{{"f1", "x"}})
	_, err := table.FeatureMatrix("m", "", nil)
	assert.True(t, core.IsInvalidMatrix(err))
}

func TestSelectAndRename(t *testing.T) {
	table := NewTable([]string{"a", "b", "c"}, [][]string{{"1", "2", "3"}})

	sel, err := table.Select([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"3", "1"}}, sel.Rows)

	_, err = table.Select([]string{"z"})
	assert.Error(t, err)

	renamed := table.Rename(func(h string) string { return h + "_x" })
	assert.Equal(t, []string{"a_x", "b_x", "c_x"}, renamed.Header)
	assert.Equal(t, []string{"a", "b", "c"}, table.Header)
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", " ", "NA", "n/a", "NaN", "null", "None", "#N/A"} {
		assert.True(t, IsMissing(v), v)
	}
	for _, v := range []string{"0", "x", "-"} {
		assert.False(t, IsMissing(v), v)
	}
}
