package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corromics/domain/core"
	"corromics/domain/omics"
)

func TestCleanSampleName(t *testing.T) {
	tests := map[string]string{
		"a.mzML Peak area":  "a",
		"B.MZXML Peak area": "B",
		" sample_3.mzml ":   "sample_3",
		"plain":             "plain",
		"x.mzML.mzML":       "x",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanSampleName(in), in)
	}
}

func TestCleanQuantTable(t *testing.T) {
	table := NewTable(
		[]string{"row ID", "row m/z", "a.mzML Peak area", "b.mzXML Peak area"},
		[][]string{{"101", "150.2", "1", "2"}})

	clean := CleanQuantTable(table, "row ID")
	assert.Equal(t, []string{"row ID", "a", "b"}, clean.Header)
	assert.Equal(t, [][]string{{"101", "1", "2"}}, clean.Rows)
}

func TestMetadata(t *testing.T) {
	table := NewTable(
		[]string{"filename", "Treatment", "Time"},
		[][]string{
			{"a.mzML", " control ", "1"},
			{"b.mzML", "drug a", "2"},
			{"c.mzML", "drug a", ""},
		})

	md, err := NewMetadata(table, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, md.Samples())
	assert.Equal(t, []string{"Treatment", "Time"}, md.Columns())

	v, ok := md.Value("b", "Treatment")
	require.True(t, ok)
	assert.Equal(t, "DRUG_A", v)

	levels, counts := md.Levels("Treatment")
	assert.Equal(t, []string{"CONTROL", "DRUG_A"}, levels)
	assert.Equal(t, 2, counts["DRUG_A"])

	levels, _ = md.Levels("Time")
	assert.Equal(t, []string{"1", "2"}, levels)

	_, err = NewMetadata(table, "sample")
	assert.True(t, core.IsInvalidMatrix(err))

	dup := NewTable([]string{"filename", "x"}, [][]string{{"a.mzML", "1"}, {"a", "2"}})
	_, err = NewMetadata(dup, "")
	assert.True(t, core.IsInvalidMatrix(err))
}

func TestAlignAndFilter(t *testing.T) {
	fm := mustMatrix(t, []string{"a", "b", "x"})
	md, err := NewMetadata(NewTable(
		[]string{"filename", "Treatment"},
		[][]string{{"a.mzML", "control"}, {"b.mzML", "drug"}, {"y.mzML", "drug"}},
	), "")
	require.NoError(t, err)

	aligned, amd, report, err := AlignWithMetadata(fm, md)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, aligned.Samples())
	assert.Equal(t, []string{"a", "b"}, amd.Samples())
	assert.Equal(t, []string{"x"}, report.DroppedFromTable)
	assert.Equal(t, []string{"y"}, report.DroppedFromMetadata)
	assert.True(t, report.Changed())

	filtered, fmd, err := FilterSamples(aligned, amd, "Treatment", []string{"drug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, filtered.Samples())
	assert.Equal(t, []string{"b"}, fmd.Samples())

	same, _, err := FilterSamples(aligned, amd, "Treatment", nil)
	require.NoError(t, err)
	assert.Same(t, aligned, same)

	_, _, err = FilterSamples(aligned, amd, "Treatment", []string{"placebo"})
	assert.True(t, core.IsInvalidMatrix(err))

	other, err := NewMetadata(NewTable([]string{"filename"}, [][]string{{"z"}}), "")
	require.NoError(t, err)
	_, _, _, err = AlignWithMetadata(fm, other)
	assert.True(t, core.IsAlignmentError(err))
}

func mustMatrix(t *testing.T, samples []string) *omics.FeatureMatrix {
	t.Helper()
	rows := [][]string{{"f1"}, {"f2"}}
	for i := range rows {
		for j := range samples {
			rows[i] = append(rows[i], []string{"1", "2", "3", "4"}[(i+j)%4])
		}
	}
	fm, err := NewTable(append([]string{"id"}, samples...), rows).FeatureMatrix("m", "id", nil)
	require.NoError(t, err)
	return fm
}
