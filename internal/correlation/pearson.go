package correlation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"corromics/domain/core"
)

// Record is one (metabolite, genomic feature) association. Invalid records
// carry NaN in every numeric field.
type Record struct {
	Estimate  float64 `json:"estimate"`
	PValue    float64 `json:"p_value"`
	FDRPValue float64 `json:"fdr_p_value"`
	RSquared  float64 `json:"r_squared"`
	Valid     bool    `json:"valid"`
}

// InvalidRecord marks a pair whose correlation is undefined.
func InvalidRecord() Record {
	nan := math.NaN()
	return Record{Estimate: nan, PValue: nan, FDRPValue: nan, RSquared: nan}
}

// Pearson returns the correlation coefficient of x and y and its two-sided
// p-value under the t distribution with n-2 degrees of freedom.
//
// A constant vector yields core.ErrDegenerateFeature. Vectors of different
// lengths, or shorter than two, are a caller error.
func Pearson(x, y []float64) (r, p float64, err error) {
	n := len(x)
	if n != len(y) {
		return math.NaN(), math.NaN(), fmt.Errorf("sample vectors differ in length: %d vs %d", len(x), len(y))
	}
	if n < 2 {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: %d samples, need at least 2", core.ErrInvalidMatrix, n)
	}
	if constant(x) || constant(y) {
		return math.NaN(), math.NaN(), core.ErrDegenerateFeature
	}

	// Sums of squares underflow or overflow at extreme magnitudes unless rescaled.
	r = stat.Correlation(unitScale(x), unitScale(y), nil)
	if math.IsNaN(r) {
		return math.NaN(), math.NaN(), core.ErrDegenerateFeature
	}
	r = math.Max(-1, math.Min(1, r))
	return r, pValue(r, n), nil
}

func pValue(r float64, n int) float64 {
	if n == 2 {
		return 1
	}
	if math.Abs(r) == 1 {
		return 0
	}
	df := float64(n - 2)
	t := math.Abs(r) * math.Sqrt(df/((1-r)*(1+r)))
	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(t)
	return math.Min(1, p)
}

// unitScale returns a copy of x divided by its largest magnitude.
func unitScale(x []float64) []float64 {
	m := floats.Norm(x, math.Inf(1))
	if !(m > 0) || math.IsInf(m, 0) {
		return x
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v / m
	}
	return out
}

func constant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}
