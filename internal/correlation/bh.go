package correlation

import (
	"math"
	"sort"
)

// BenjaminiHochberg adjusts a family of p-values for the false discovery rate.
// NaN entries are left out of the family and stay NaN in the result.
func BenjaminiHochberg(pvalues []float64) []float64 {
	adjusted := make([]float64, len(pvalues))
	idx := make([]int, 0, len(pvalues))
	for i, p := range pvalues {
		if math.IsNaN(p) {
			adjusted[i] = math.NaN()
			continue
		}
		idx = append(idx, i)
	}
	if len(idx) == 0 {
		return adjusted
	}

	sort.SliceStable(idx, func(a, b int) bool { return pvalues[idx[a]] < pvalues[idx[b]] })

	m := float64(len(idx))
	running := math.Inf(1)
	for k := len(idx) - 1; k >= 0; k-- {
		i := idx[k]
		q := pvalues[i] * m / float64(k+1)
		if q < running {
			running = q
		}
		adjusted[i] = math.Min(1, running)
	}
	return adjusted
}
