package fdr

import (
	"fmt"
	"math"
)

// Point is one plotted (score, value) pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HistogramChart overlays the target and decoy score distributions.
type HistogramChart struct {
	Title         string    `json:"title"`
	XLabel        string    `json:"x_label"`
	YLabel        string    `json:"y_label"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	XMin          float64   `json:"x_min"`
	XMax          float64   `json:"x_max"`
	Edges         []float64 `json:"edges"`
	Target        []int     `json:"target"`
	Decoy         []int     `json:"decoy"`
	TargetColor   string    `json:"target_color"`
	DecoyColor    string    `json:"decoy_color"`
	TargetOpacity float64   `json:"target_opacity"`
	DecoyOpacity  float64   `json:"decoy_opacity"`
}

// MaxCount is the tallest bar of either series.
func (h HistogramChart) MaxCount() int {
	m := 0
	for i := range h.Target {
		m = max(m, h.Target[i], h.Decoy[i])
	}
	return m
}

// ThresholdMarker is a horizontal reference line at an FDR percentage, with the
// curve points that fall within the tolerance band around it.
type ThresholdMarker struct {
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
	X0      float64 `json:"x0"`
	X1      float64 `json:"x1"`
	Points  []Point `json:"points"`
}

// FDRCurveChart plots FDR (in percent) against each bin's lower edge.
type FDRCurveChart struct {
	Title      string            `json:"title"`
	XLabel     string            `json:"x_label"`
	YLabel     string            `json:"y_label"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	XMin       float64           `json:"x_min"`
	XMax       float64           `json:"x_max"`
	Points     []Point           `json:"points"`
	Thresholds []ThresholdMarker `json:"thresholds"`
}

var thresholdColors = []string{"green", "orange", "red"}

func (e *Estimator) histogramChart(target, decoy []float64) HistogramChart {
	edges := Edges(e.opts.ScoreMin, e.opts.ScoreMax, e.opts.HistogramBinWidth)
	return HistogramChart{
		Title:         "Histogram of Target vs. Decoy Scores",
		XLabel:        "Correlation Score Range",
		YLabel:        "Frequency",
		Width:         e.opts.Width,
		Height:        e.opts.Height,
		XMin:          e.opts.ScoreMin,
		XMax:          e.opts.ScoreMax,
		Edges:         edges,
		Target:        Count(target, edges),
		Decoy:         Count(decoy, edges),
		TargetColor:   "blue",
		DecoyColor:    "red",
		TargetOpacity: 0.7,
		DecoyOpacity:  0.3,
	}
}

func (e *Estimator) curveChart(t *Table) FDRCurveChart {
	c := FDRCurveChart{
		Title:  "Overlay of FDR Score for Target-Decoy Sets",
		XLabel: "Correlation Score Range",
		YLabel: "FDR (%)",
		Width:  e.opts.Width,
		Height: e.opts.Height,
		XMin:   e.opts.ScoreMin,
		XMax:   e.opts.ScoreMax,
	}

	x0, x1 := math.Inf(1), math.Inf(-1)
	for _, b := range t.Bins {
		x0 = math.Min(x0, b.RangeMin)
		x1 = math.Max(x1, b.RangeMin)
		if math.IsNaN(b.FDR) {
			continue
		}
		c.Points = append(c.Points, Point{X: b.RangeMin, Y: b.FDR * 100})
	}
	if len(t.Bins) == 0 {
		x0, x1 = e.opts.ScoreMin, e.opts.ScoreMax
	}

	for i, pct := range e.opts.Thresholds {
		m := ThresholdMarker{
			Percent: pct,
			Label:   fmt.Sprintf("%g%% FDR", pct),
			Color:   thresholdColors[i%len(thresholdColors)],
			X0:      x0,
			X1:      x1,
		}
		for _, p := range c.Points {
			if p.Y >= pct-e.opts.Tolerance && p.Y <= pct+e.opts.Tolerance {
				m.Points = append(m.Points, p)
			}
		}
		c.Thresholds = append(c.Thresholds, m)
	}
	return c
}
