package tabular

import (
	"fmt"
	"sort"
	"strings"

	"corromics/domain/core"
	"corromics/domain/omics"
)

var taxonomicHierarchy = []string{
	"domain", "domains",
	"kingdom", "kingdoms",
	"phylum", "phyla",
	"class", "classes",
	"order", "orders",
	"family", "families",
	"genus", "genera",
	"species",
}

func taxonomicRank(column string) int {
	lower := strings.ToLower(column)
	for i, term := range taxonomicHierarchy {
		if strings.Contains(lower, term) {
			return i
		}
	}
	return len(taxonomicHierarchy)
}

// OrderTaxonomicColumns sorts columns from domain down to species. Columns that
// name no rank keep their relative order at the end.
func OrderTaxonomicColumns(columns []string) []string {
	out := append([]string(nil), columns...)
	sort.SliceStable(out, func(i, j int) bool { return taxonomicRank(out[i]) < taxonomicRank(out[j]) })
	return out
}

// TaxonomicColumns picks the columns that name a rank, ordered from the top
// rank down.
func TaxonomicColumns(header []string) []string {
	var out []string
	for _, h := range OrderTaxonomicColumns(header) {
		if taxonomicRank(h) < len(taxonomicHierarchy) {
			out = append(out, h)
		}
	}
	return out
}

// OverallSumColumn is the per-group total added by BinByTaxonomicLevel.
const OverallSumColumn = "Overall_sum"

// BinnedTable is a genomic table aggregated to one taxonomic level.
type BinnedTable struct {
	GroupColumn string
	Groups      []string
	Samples     []string
	Values      [][]float64
	OverallSum  []float64
}

// Matrix converts the binned table into a feature matrix keyed by lineage.
func (b *BinnedTable) Matrix(name string) (*omics.FeatureMatrix, error) {
	return omics.NewFeatureMatrix(name, b.Groups, b.Samples, b.Values)
}

// BinByTaxonomicLevel groups rows by their lineage down to level and sums every
// numeric column per group. Rows missing any rank up to level are dropped, and
// groups whose overall sum is zero are removed. order lists the taxonomic
// columns from the top rank down; indexColumn is never summed.
func BinByTaxonomicLevel(t *Table, order []string, level, indexColumn string) (*BinnedTable, error) {
	depth := -1
	for i, c := range order {
		if c == level {
			depth = i
			break
		}
	}
	if depth < 0 {
		return nil, fmt.Errorf("%w: invalid taxonomic level %q, must be one of %v", core.ErrInvalidMatrix, level, order)
	}
	ranks := order[:depth+1]
	rankIdx := make([]int, len(ranks))
	for k, r := range ranks {
		i, ok := t.Column(r)
		if !ok {
			return nil, fmt.Errorf("%w: taxonomic column %q not found", core.ErrInvalidMatrix, r)
		}
		rankIdx[k] = i
	}

	exclude := append(append([]string(nil), order...), indexColumn)
	samples, _ := t.NumericColumns(exclude...)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no numeric columns to sum", core.ErrInvalidMatrix)
	}
	sampleIdx := make([]int, len(samples))
	for k, s := range samples {
		sampleIdx[k], _ = t.Column(s)
	}

	sums := make(map[string][]float64)
	for _, row := range t.Rows {
		lineage := make([]string, len(rankIdx))
		complete := true
		for k, i := range rankIdx {
			if IsMissing(row[i]) {
				complete = false
				break
			}
			lineage[k] = row[i]
		}
		if !complete {
			continue
		}
		key := strings.Join(lineage, "_")
		acc, ok := sums[key]
		if !ok {
			acc = make([]float64, len(samples))
			sums[key] = acc
		}
		for k, i := range sampleIdx {
			if IsMissing(row[i]) {
				continue
			}
			v, _ := parseNumber(row[i])
			acc[k] += v
		}
	}

	groups := make([]string, 0, len(sums))
	for g := range sums {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	out := &BinnedTable{GroupColumn: strings.Join(ranks, "_"), Samples: samples}
	for _, g := range groups {
		var total float64
		for _, v := range sums[g] {
			total += v
		}
		if total <= 0 {
			continue
		}
		out.Groups = append(out.Groups, g)
		out.Values = append(out.Values, sums[g])
		out.OverallSum = append(out.OverallSum, total)
	}
	if len(out.Groups) == 0 {
		return nil, fmt.Errorf("%w: every %s group sums to zero", core.ErrNoInformativeFeatures, level)
	}
	return out, nil
}
