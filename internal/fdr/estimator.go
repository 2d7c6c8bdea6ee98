// Package fdr turns target and decoy correlation scores into an empirical,
// direction-aware false discovery rate curve.
package fdr

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"corromics/internal/correlation"
	"corromics/internal/logging"
)

// Side is the direction a bin accumulates from.
type Side string

const (
	SideNegative Side = "negative"
	SidePositive Side = "positive"
)

// Bin is one score interval of the FDR table.
type Bin struct {
	RangeMin    float64 `json:"range_min"`
	RangeMax    float64 `json:"range_max"`
	TargetCount int     `json:"target_count"`
	DecoyCount  int     `json:"decoy_count"`
	CumTarget   int     `json:"cum_target"`
	CumDecoy    int     `json:"cum_decoy"`
	FDR         float64 `json:"fdr"`
	// Defined is false when the cumulative denominator was zero and FDR was
	// set by the zero policy.
	Defined bool `json:"defined"`
	Side    Side `json:"side"`
}

// Table holds the negative-side bins followed by the positive-side bins, both
// in ascending score order. The bin whose upper edge is zero belongs to
// neither side and is not in the table.
type Table struct {
	Bins       []Bin      `json:"bins"`
	BinWidth   float64    `json:"bin_width"`
	ZeroPolicy ZeroPolicy `json:"zero_policy"`
}

// Result is the externally visible output of the estimator.
type Result struct {
	Table     *Table
	Histogram HistogramChart
	Curve     FDRCurveChart
}

// Estimator computes FDR tables with fixed options.
type Estimator struct {
	opts   Options
	logger *zap.Logger
}

// NewEstimator validates opts and creates an estimator.
func NewEstimator(opts Options, logger *zap.Logger) (*Estimator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("fdr options: %w", err)
	}
	if opts.ZeroPolicy == "" {
		opts.ZeroPolicy = ZeroAsNaN
	}
	return &Estimator{opts: opts, logger: logging.OrNop(logger).Named("fdr")}, nil
}

func (e *Estimator) Options() Options { return e.opts }

// Estimate bins both tables over identical edges and derives the cumulative
// FDR per side, plus the chart data.
func (e *Estimator) Estimate(target, decoy *correlation.LongTable) (*Result, error) {
	if target == nil || decoy == nil {
		return nil, fmt.Errorf("fdr: target and decoy tables are required")
	}
	table := e.Table(target.Estimates(), decoy.Estimates())

	res := &Result{
		Table:     table,
		Histogram: e.histogramChart(target.Estimates(), decoy.Estimates()),
		Curve:     e.curveChart(table),
	}

	defined := 0
	for _, b := range table.Bins {
		if b.Defined {
			defined++
		}
	}
	e.logger.Debug("fdr table built",
		zap.Int("bins", len(table.Bins)),
		zap.Int("defined", defined),
		zap.Int("target_scores", target.Len()),
		zap.Int("decoy_scores", decoy.Len()))
	return res, nil
}

// Table builds the FDR bin table from raw score columns.
func (e *Estimator) Table(targetScores, decoyScores []float64) *Table {
	edges := Edges(e.opts.ScoreMin, e.opts.ScoreMax, e.opts.BinWidth)
	tc := Count(targetScores, edges)
	dc := Count(decoyScores, edges)

	var negative, positive []Bin
	for i := range tc {
		b := Bin{RangeMin: edges[i], RangeMax: edges[i+1], TargetCount: tc[i], DecoyCount: dc[i]}
		switch {
		case b.RangeMax < 0:
			b.Side = SideNegative
			negative = append(negative, b)
		case b.RangeMax > 0:
			b.Side = SidePositive
			positive = append(positive, b)
		}
	}

	// Negative side accumulates from the lowest score up.
	var ct, cd int
	for i := range negative {
		ct += negative[i].TargetCount
		cd += negative[i].DecoyCount
		e.fill(&negative[i], ct, cd)
	}
	// Positive side accumulates from the highest score down.
	ct, cd = 0, 0
	for i := len(positive) - 1; i >= 0; i-- {
		ct += positive[i].TargetCount
		cd += positive[i].DecoyCount
		e.fill(&positive[i], ct, cd)
	}

	bins := make([]Bin, 0, len(negative)+len(positive))
	bins = append(bins, negative...)
	bins = append(bins, positive...)
	return &Table{Bins: bins, BinWidth: e.opts.BinWidth, ZeroPolicy: e.opts.ZeroPolicy}
}

func (e *Estimator) fill(b *Bin, cumTarget, cumDecoy int) {
	b.CumTarget, b.CumDecoy = cumTarget, cumDecoy
	denom := float64(cumTarget) + e.opts.Epsilon + float64(cumDecoy)
	if denom == 0 {
		b.FDR = e.opts.ZeroPolicy.value()
		return
	}
	b.FDR = float64(cumDecoy) / denom
	b.Defined = true
}

// Side returns the bins of one side in ascending score order.
func (t *Table) Side(side Side) []Bin {
	var out []Bin
	for _, b := range t.Bins {
		if b.Side == side {
			out = append(out, b)
		}
	}
	return out
}

// Lookup returns the bin containing score, if the table has one.
func (t *Table) Lookup(score float64) (Bin, bool) {
	if math.IsNaN(score) {
		return Bin{}, false
	}
	for i, b := range t.Bins {
		last := i == len(t.Bins)-1
		if score >= b.RangeMin && (score < b.RangeMax || (last && score == b.RangeMax)) {
			return b, true
		}
	}
	return Bin{}, false
}
