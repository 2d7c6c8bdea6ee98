package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corromics/internal/errors"
	"corromics/internal/fdr"
)

func sampleHistogram() fdr.HistogramChart {
	return fdr.HistogramChart{
		Title:         "Histogram of Target vs. Decoy Scores",
		XLabel:        "Correlation Score Range",
		YLabel:        "Frequency",
		Width:         900,
		Height:        500,
		XMin:          -1,
		XMax:          1,
		Edges:         []float64{-1, -0.5, 0, 0.5, 1},
		Target:        []int{2, 5, 6, 3},
		Decoy:         []int{1, 7, 7, 1},
		TargetColor:   "blue",
		DecoyColor:    "red",
		TargetOpacity: 0.7,
		DecoyOpacity:  0.3,
	}
}

func sampleCurve() fdr.FDRCurveChart {
	return fdr.FDRCurveChart{
		Title:  "Overlay of FDR Score for Target-Decoy Sets",
		XLabel: "Correlation Score Range",
		YLabel: "FDR (%)",
		Width:  900,
		Height: 500,
		XMin:   -1,
		XMax:   1,
		Points: []fdr.Point{{X: -1, Y: 5}, {X: -0.5, Y: 15.5}, {X: 0.5, Y: 40}, {X: 0.75, Y: 10.2}},
		Thresholds: []fdr.ThresholdMarker{
			{Percent: 10, Label: "10% FDR", Color: "green", X0: -1, X1: 0.75, Points: []fdr.Point{{X: 0.75, Y: 10.2}}},
			{Percent: 15, Label: "15% FDR", Color: "orange", X0: -1, X1: 0.75, Points: []fdr.Point{{X: -0.5, Y: 15.5}}},
			{Percent: 20, Label: "20% FDR", Color: "red", X0: -1, X1: 0.75},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	f, err = ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestHistogramSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHistogram(&buf, sampleHistogram(), FormatSVG))
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Histogram of Target vs. Decoy Scores")
	assert.Contains(t, out, "Decoy")
}

func TestHistogramPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHistogram(&buf, sampleHistogram(), FormatPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestHistogramEmptyCounts(t *testing.T) {
	h := sampleHistogram()
	h.Target = []int{0, 0, 0, 0}
	h.Decoy = []int{0, 0, 0, 0}
	var buf bytes.Buffer
	assert.NoError(t, RenderHistogram(&buf, h, FormatSVG))
}

func TestHistogramMismatchedCounts(t *testing.T) {
	h := sampleHistogram()
	h.Target = h.Target[:2]
	err := RenderHistogram(&bytes.Buffer{}, h, FormatSVG)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestFDRCurve(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFDRCurve(&buf, sampleCurve(), FormatSVG))
	out := buf.String()
	assert.Contains(t, out, "Overlay of FDR Score for Target-Decoy Sets")
	assert.Contains(t, out, "15% FDR")
}

func TestFDRCurveThresholdsOnly(t *testing.T) {
	c := sampleCurve()
	c.Points = nil
	for i := range c.Thresholds {
		c.Thresholds[i].Points = nil
	}
	var buf bytes.Buffer
	require.NoError(t, RenderFDRCurve(&buf, c, FormatPNG))
	assert.NotZero(t, buf.Len())
}

func TestFDRCurveNothingToPlot(t *testing.T) {
	err := RenderFDRCurve(&bytes.Buffer{}, fdr.FDRCurveChart{XMin: -1, XMax: 1}, FormatSVG)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, uint8(255), colorFor("blue", 1).A)
	assert.Equal(t, uint8(179), colorFor("blue", 0.7).A)
	assert.Equal(t, uint8(0xA5), colorFor("orange", 1).G)
}
