package fdr

import (
	"fmt"
	"math"
	"strings"
)

// ZeroPolicy decides the FDR of a bin whose cumulative counts are both zero.
type ZeroPolicy string

const (
	ZeroAsNaN  ZeroPolicy = "nan"
	ZeroAsZero ZeroPolicy = "zero"
	ZeroAsOne  ZeroPolicy = "one"
)

// ParseZeroPolicy accepts nan, zero or one, case-insensitively.
func ParseZeroPolicy(s string) (ZeroPolicy, error) {
	switch p := ZeroPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ZeroAsNaN, ZeroAsZero, ZeroAsOne:
		return p, nil
	case "":
		return ZeroAsNaN, nil
	}
	return "", fmt.Errorf("unknown zero-denominator policy %q", s)
}

func (p ZeroPolicy) value() float64 {
	switch p {
	case ZeroAsZero:
		return 0
	case ZeroAsOne:
		return 1
	default:
		return math.NaN()
	}
}

// Options configures an Estimator.
type Options struct {
	ScoreMin          float64
	ScoreMax          float64
	BinWidth          float64
	HistogramBinWidth float64
	Epsilon           float64
	ZeroPolicy        ZeroPolicy
	// Thresholds are FDR percentages marked on the curve.
	Thresholds []float64
	// Tolerance is the half-width, in percentage points, of the band around
	// each threshold whose points are highlighted.
	Tolerance float64
	Width     int
	Height    int
}

// DefaultOptions mirrors the reference analysis.
func DefaultOptions() Options {
	return Options{
		ScoreMin:          -1,
		ScoreMax:          1,
		BinWidth:          0.001,
		HistogramBinWidth: 0.1,
		Epsilon:           0,
		ZeroPolicy:        ZeroAsNaN,
		Thresholds:        []float64{10, 15, 20},
		Tolerance:         0.8,
		Width:             900,
		Height:            500,
	}
}

// MaxBins caps the number of bins a score range may be split into.
const MaxBins = 1_000_000

// CheckBinWidth reports whether width splits [min, max] into at most MaxBins
// equal bins.
func CheckBinWidth(min, max, width float64) error {
	span := max - min
	if !(width > 0) || math.IsInf(width, 0) {
		return fmt.Errorf("%g must be positive and finite", width)
	}
	if width > span {
		return fmt.Errorf("%g is wider than the score range", width)
	}
	n := math.Round(span / width)
	if n > MaxBins {
		return fmt.Errorf("%g yields more than %d bins", width, MaxBins)
	}
	if math.Abs(n*width-span) > 1e-9*span {
		return fmt.Errorf("%g does not divide the score range [%g, %g] evenly", width, min, max)
	}
	return nil
}

// Validate rejects options that cannot produce a bin table.
func (o Options) Validate() error {
	if !(o.ScoreMin < o.ScoreMax) {
		return fmt.Errorf("score range [%g, %g] is empty", o.ScoreMin, o.ScoreMax)
	}
	if err := CheckBinWidth(o.ScoreMin, o.ScoreMax, o.BinWidth); err != nil {
		return fmt.Errorf("bin width: %w", err)
	}
	if err := CheckBinWidth(o.ScoreMin, o.ScoreMax, o.HistogramBinWidth); err != nil {
		return fmt.Errorf("histogram bin width: %w", err)
	}
	if o.Epsilon < 0 || o.Tolerance < 0 {
		return fmt.Errorf("epsilon and tolerance cannot be negative")
	}
	if _, err := ParseZeroPolicy(string(o.ZeroPolicy)); err != nil {
		return err
	}
	return nil
}
