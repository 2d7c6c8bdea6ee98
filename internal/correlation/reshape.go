package correlation

import (
	"math"
	"sort"

	"corromics/domain/core"
)

// LongRow is one record flattened with its two endpoints.
type LongRow struct {
	Feature  string `json:"feature"`
	Variable string `json:"variable"`
	Record
}

// LongTable is the long-form correlation table of one run.
type LongTable struct {
	Kind core.RunKind `json:"kind"`
	Rows []LongRow    `json:"rows"`
}

// Melt stacks the per-feature tables of result into one long table: variables
// in result order, metabolites in metabolite order within each variable.
// Invalid records are kept.
func Melt(kind core.RunKind, result *Result) *LongTable {
	rows := make([]LongRow, 0, result.Pairs())
	for _, variable := range result.Variables {
		fr := result.ByVariable[variable]
		for i, rec := range fr.Records {
			rows = append(rows, LongRow{
				Feature:  result.Metabolites[i],
				Variable: variable,
				Record:   rec,
			})
		}
	}
	return &LongTable{Kind: kind, Rows: rows}
}

func (t *LongTable) Len() int { return len(t.Rows) }

// Estimates returns the estimate column, NaN for invalid records.
func (t *LongTable) Estimates() []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Estimate
	}
	return out
}

// InvalidCount counts records whose correlation is undefined.
func (t *LongTable) InvalidCount() int {
	n := 0
	for _, r := range t.Rows {
		if !r.Valid {
			n++
		}
	}
	return n
}

// Filter keeps valid records with estimate <= negCutoff or estimate >= posCutoff.
// A NaN cutoff disables that side.
func (t *LongTable) Filter(negCutoff, posCutoff float64) *LongTable {
	out := &LongTable{Kind: t.Kind}
	for _, r := range t.Rows {
		if !r.Valid {
			continue
		}
		if (!math.IsNaN(negCutoff) && r.Estimate <= negCutoff) ||
			(!math.IsNaN(posCutoff) && r.Estimate >= posCutoff) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Top returns up to n valid records with the largest absolute estimate.
func (t *LongTable) Top(n int) []LongRow {
	valid := make([]LongRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Valid {
			valid = append(valid, r)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return math.Abs(valid[i].Estimate) > math.Abs(valid[j].Estimate)
	})
	if n < len(valid) {
		valid = valid[:n]
	}
	return valid
}
