package omics

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	"corromics/domain/core"
)

// Assay names the block a combined row came from.
type Assay string

const (
	AssayMetabolome Assay = "metabolome"
	AssayGenome     Assay = "genome"
)

// CombinedRow describes one row of a CombinedMatrix. Index is the synthetic
// row label; FeatureID keeps the original identifier.
type CombinedRow struct {
	Index     int    `json:"index"`
	FeatureID string `json:"feature_id"`
	Assay     Assay  `json:"assay"`
}

// CombinedMatrix stacks the metabolome rows on top of the genome rows over the
// samples both share.
type CombinedMatrix struct {
	rows       []CombinedRow
	samples    []string
	data       *mat.Dense
	metabolome int
	genome     int
}

// SharedSamples intersects the sample columns of a and b, preserving a's order.
func SharedSamples(a, b *FeatureMatrix) []string {
	inB := make(map[string]struct{}, b.Cols())
	for _, s := range b.samples {
		inB[s] = struct{}{}
	}
	var shared []string
	for _, s := range a.samples {
		if _, ok := inB[s]; ok {
			shared = append(shared, s)
		}
	}
	return shared
}

// Combine aligns both matrices on their shared samples and concatenates them
// row-wise, metabolome first. It fails with core.ErrAlignment when no sample is
// shared.
func Combine(metabolome, genome *FeatureMatrix) (*CombinedMatrix, error) {
	shared := SharedSamples(metabolome, genome)
	if len(shared) == 0 {
		return nil, core.NewAlignmentError(metabolome.Cols(), genome.Cols())
	}

	left, err := metabolome.SelectSamples(shared)
	if err != nil {
		return nil, err
	}
	right, err := genome.SelectSamples(shared)
	if err != nil {
		return nil, err
	}

	var stacked mat.Dense
	stacked.Stack(left.data, right.data)

	rows := make([]CombinedRow, 0, left.Rows()+right.Rows())
	for _, f := range left.features {
		rows = append(rows, CombinedRow{Index: len(rows), FeatureID: f, Assay: AssayMetabolome})
	}
	for _, f := range right.features {
		rows = append(rows, CombinedRow{Index: len(rows), FeatureID: f, Assay: AssayGenome})
	}

	return &CombinedMatrix{
		rows:       rows,
		samples:    shared,
		data:       &stacked,
		metabolome: left.Rows(),
		genome:     right.Rows(),
	}, nil
}

func (c *CombinedMatrix) Rows() int { return len(c.rows) }

func (c *CombinedMatrix) Cols() int { return len(c.samples) }

// Samples returns a copy of the shared sample ids.
func (c *CombinedMatrix) Samples() []string { return append([]string(nil), c.samples...) }

// Row describes row i.
func (c *CombinedMatrix) Row(i int) CombinedRow { return c.rows[i] }

// RowLabel is the synthetic unique label of row i.
func (c *CombinedMatrix) RowLabel(i int) string { return strconv.Itoa(c.rows[i].Index) }

// MetaboliteRows is the number of leading rows that came from the metabolome.
func (c *CombinedMatrix) MetaboliteRows() int { return c.metabolome }

// GenomicRows is the number of trailing rows that came from the genome.
func (c *CombinedMatrix) GenomicRows() int { return c.genome }

// RawRow returns the backing slice of row i. Callers must not modify it.
func (c *CombinedMatrix) RawRow(i int) []float64 { return c.data.RawRowView(i) }

func (c *CombinedMatrix) At(i, j int) float64 { return c.data.At(i, j) }

// Fingerprint identifies the exact content of the combined matrix.
func (c *CombinedMatrix) Fingerprint() core.Hash {
	labels := make([]string, len(c.rows))
	flat := make([]float64, 0, c.Rows()*c.Cols())
	for i, r := range c.rows {
		labels[i] = string(r.Assay) + ":" + r.FeatureID
		flat = append(flat, c.data.RawRowView(i)...)
	}
	return core.ComputeMatrixHash(labels, c.samples, flat)
}
