package fdr

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Edges returns the bin edges min, min+width, ..., max. Edges within a
// billionth of a bin of zero are snapped to exactly zero, and the last edge is
// exactly max.
func Edges(min, max, width float64) []float64 {
	n := int(math.Round((max - min) / width))
	if n < 1 {
		n = 1
	}
	edges := make([]float64, n+1)
	for i := range edges {
		e := min + float64(i)*width
		if math.Abs(e) < 1e-9*width {
			e = 0
		}
		edges[i] = e
	}
	edges[n] = max
	return edges
}

// Count bins values over edges. Bins are half-open except the last, which also
// counts values equal to the upper edge. NaN and out-of-range values are not
// counted.
func Count(values, edges []float64) []int {
	bins := len(edges) - 1
	counts := make([]int, bins)
	if bins < 1 {
		return counts
	}
	lo, hi := edges[0], edges[bins]

	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && v >= lo && v <= hi {
			x = append(x, v)
		}
	}
	if len(x) == 0 {
		return counts
	}
	sort.Float64s(x)

	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	for i, c := range stat.Histogram(nil, dividers, x, nil) {
		counts[i] = int(c)
	}
	return counts
}
