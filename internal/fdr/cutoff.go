package fdr

import "math"

// Cutoff is the pair of score cutoffs suggested for one FDR threshold. A side
// with no qualifying bin is NaN.
type Cutoff struct {
	ThresholdPercent float64 `json:"threshold_percent"`
	Negative         float64 `json:"negative"`
	Positive         float64 `json:"positive"`
}

func (c Cutoff) HasNegative() bool { return !math.IsNaN(c.Negative) }

func (c Cutoff) HasPositive() bool { return !math.IsNaN(c.Positive) }

// Cutoffs walks each side from its extreme toward zero and returns the least
// extreme bin edge reached while the defined FDR stays at or below
// thresholdPercent. Bins without a defined FDR are stepped over.
func (t *Table) Cutoffs(thresholdPercent float64) Cutoff {
	limit := thresholdPercent / 100
	c := Cutoff{ThresholdPercent: thresholdPercent, Negative: math.NaN(), Positive: math.NaN()}

	negative := t.Side(SideNegative)
	for _, b := range negative {
		if !b.Defined {
			continue
		}
		if b.FDR > limit {
			break
		}
		c.Negative = b.RangeMax
	}

	positive := t.Side(SidePositive)
	for i := len(positive) - 1; i >= 0; i-- {
		b := positive[i]
		if !b.Defined {
			continue
		}
		if b.FDR > limit {
			break
		}
		c.Positive = b.RangeMin
	}
	return c
}

// SuggestCutoffs returns one Cutoff per threshold.
func (t *Table) SuggestCutoffs(thresholds []float64) []Cutoff {
	out := make([]Cutoff, 0, len(thresholds))
	for _, pct := range thresholds {
		out = append(out, t.Cutoffs(pct))
	}
	return out
}
