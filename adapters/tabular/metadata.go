package tabular

import (
	"fmt"
	"sort"

	"corromics/domain/core"
	"corromics/domain/omics"
)

// DefaultMetadataIndex is the column naming each sample in a metadata table.
const DefaultMetadataIndex = "filename"

// Metadata maps sample names to attribute values.
type Metadata struct {
	index   []string
	columns []string
	values  map[string]map[string]string
}

// NewMetadata builds metadata from t using indexColumn (DefaultMetadataIndex
// when empty). Sample names are cleaned like quantification headers and
// attribute values are normalized.
func NewMetadata(t *Table, indexColumn string) (*Metadata, error) {
	if indexColumn == "" {
		indexColumn = DefaultMetadataIndex
	}
	ix, ok := t.Column(indexColumn)
	if !ok {
		return nil, fmt.Errorf("%w: metadata has no %q column", core.ErrInvalidMatrix, indexColumn)
	}

	md := &Metadata{values: make(map[string]map[string]string)}
	for i, h := range t.Header {
		if i != ix {
			md.columns = append(md.columns, h)
		}
	}
	for _, row := range t.Rows {
		sample := CleanSampleName(row[ix])
		if sample == "" {
			continue
		}
		if _, dup := md.values[sample]; dup {
			return nil, fmt.Errorf("%w: duplicate metadata sample %q", core.ErrInvalidMatrix, sample)
		}
		attrs := make(map[string]string, len(md.columns))
		for i, h := range t.Header {
			if i != ix {
				attrs[h] = cleanAttribute(row[i])
			}
		}
		md.index = append(md.index, sample)
		md.values[sample] = attrs
	}
	return md, nil
}

// Samples returns the sample names in table order.
func (m *Metadata) Samples() []string { return append([]string(nil), m.index...) }

// Columns returns the attribute names.
func (m *Metadata) Columns() []string { return append([]string(nil), m.columns...) }

func (m *Metadata) Has(sample string) bool {
	_, ok := m.values[sample]
	return ok
}

// Value returns one attribute of one sample.
func (m *Metadata) Value(sample, column string) (string, bool) {
	attrs, ok := m.values[sample]
	if !ok {
		return "", false
	}
	v, ok := attrs[column]
	return v, ok
}

// Levels returns the sorted distinct non-missing values of column with their
// counts.
func (m *Metadata) Levels(column string) ([]string, map[string]int) {
	counts := make(map[string]int)
	for _, s := range m.index {
		v := m.values[s][column]
		if IsMissing(v) {
			continue
		}
		counts[v]++
	}
	levels := make([]string, 0, len(counts))
	for v := range counts {
		levels = append(levels, v)
	}
	sort.Strings(levels)
	return levels, counts
}

// Subset keeps the given samples in the given order.
func (m *Metadata) Subset(samples []string) *Metadata {
	out := &Metadata{columns: m.columns, values: make(map[string]map[string]string, len(samples))}
	for _, s := range samples {
		if attrs, ok := m.values[s]; ok {
			out.index = append(out.index, s)
			out.values[s] = attrs
		}
	}
	return out
}

// AlignmentReport lists what AlignWithMetadata removed.
type AlignmentReport struct {
	DroppedFromTable    []string `json:"dropped_from_table"`
	DroppedFromMetadata []string `json:"dropped_from_metadata"`
}

func (r AlignmentReport) Changed() bool {
	return len(r.DroppedFromTable) > 0 || len(r.DroppedFromMetadata) > 0
}

// AlignWithMetadata drops sample columns with no metadata and metadata rows
// with no sample column.
func AlignWithMetadata(fm *omics.FeatureMatrix, md *Metadata) (*omics.FeatureMatrix, *Metadata, AlignmentReport, error) {
	var report AlignmentReport
	var shared []string
	inTable := make(map[string]bool, fm.Cols())
	for _, s := range fm.Samples() {
		inTable[s] = true
		if md.Has(s) {
			shared = append(shared, s)
		} else {
			report.DroppedFromTable = append(report.DroppedFromTable, s)
		}
	}
	for _, s := range md.index {
		if !inTable[s] {
			report.DroppedFromMetadata = append(report.DroppedFromMetadata, s)
		}
	}
	if len(shared) == 0 {
		return nil, nil, report, core.NewAlignmentError(fm.Cols(), len(md.index))
	}

	aligned, err := fm.SelectSamples(shared)
	if err != nil {
		return nil, nil, report, err
	}
	return aligned, md.Subset(shared), report, nil
}

// FilterSamples keeps the samples whose metadata column holds one of
// categories. An empty category list keeps everything.
func FilterSamples(fm *omics.FeatureMatrix, md *Metadata, column string, categories []string) (*omics.FeatureMatrix, *Metadata, error) {
	if len(categories) == 0 {
		return fm, md, nil
	}
	want := make(map[string]bool, len(categories))
	for _, c := range categories {
		want[cleanAttribute(c)] = true
	}

	var keep []string
	for _, s := range fm.Samples() {
		if v, ok := md.Value(s, column); ok && want[v] {
			keep = append(keep, s)
		}
	}
	if len(keep) == 0 {
		return nil, nil, fmt.Errorf("%w: no sample has %s in %v", core.ErrInvalidMatrix, column, categories)
	}
	filtered, err := fm.SelectSamples(keep)
	if err != nil {
		return nil, nil, err
	}
	return filtered, md.Subset(keep), nil
}
