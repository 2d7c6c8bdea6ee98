package omics

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"corromics/domain/core"
)

// FeatureMatrix is a dense numeric table: rows are feature identifiers, columns
// are sample identifiers. Values are finite; labels are unique and non-empty.
type FeatureMatrix struct {
	name     string
	features []string
	samples  []string
	data     *mat.Dense
}

// NewFeatureMatrix builds a matrix from row-major values.
func NewFeatureMatrix(name string, features, samples []string, values [][]float64) (*FeatureMatrix, error) {
	if len(values) != len(features) {
		return nil, core.NewInvalidMatrixError(name, fmt.Sprintf("%d value rows for %d features", len(values), len(features)))
	}
	if len(features) == 0 || len(samples) == 0 {
		return nil, core.NewInvalidMatrixError(name, "matrix needs at least one feature and one sample")
	}
	flat := make([]float64, 0, len(features)*len(samples))
	for i, row := range values {
		if len(row) != len(samples) {
			return nil, core.NewInvalidMatrixError(name, fmt.Sprintf("row %s has %d values, expected %d", features[i], len(row), len(samples)))
		}
		flat = append(flat, row...)
	}
	return NewFeatureMatrixFromDense(name, features, samples, mat.NewDense(len(features), len(samples), flat))
}

// NewFeatureMatrixFromDense wraps an existing dense matrix. The matrix is not copied.
func NewFeatureMatrixFromDense(name string, features, samples []string, data *mat.Dense) (*FeatureMatrix, error) {
	if data == nil || data.IsEmpty() {
		return nil, core.NewInvalidMatrixError(name, "matrix needs at least one feature and one sample")
	}
	r, c := data.Dims()
	if r != len(features) || c != len(samples) {
		return nil, core.NewInvalidMatrixError(name, fmt.Sprintf("dims %dx%d do not match %d features x %d samples", r, c, len(features), len(samples)))
	}
	if err := checkLabels(features); err != nil {
		return nil, core.NewInvalidMatrixError(name, "features: "+err.Error())
	}
	if err := checkLabels(samples); err != nil {
		return nil, core.NewInvalidMatrixError(name, "samples: "+err.Error())
	}
	for i := 0; i < r; i++ {
		for j, v := range data.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.NewInvalidMatrixError(name, fmt.Sprintf("non-finite value at %s/%s", features[i], samples[j]))
			}
		}
	}
	return &FeatureMatrix{
		name:     name,
		features: append([]string(nil), features...),
		samples:  append([]string(nil), samples...),
		data:     data,
	}, nil
}

func checkLabels(labels []string) error {
	seen := make(map[string]struct{}, len(labels))
	for i, l := range labels {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("empty label at position %d", i)
		}
		if _, dup := seen[l]; dup {
			return fmt.Errorf("duplicate label %q", l)
		}
		seen[l] = struct{}{}
	}
	return nil
}

func (m *FeatureMatrix) Name() string { return m.name }

func (m *FeatureMatrix) Rows() int { return len(m.features) }

func (m *FeatureMatrix) Cols() int { return len(m.samples) }

// Features returns a copy of the row identifiers.
func (m *FeatureMatrix) Features() []string { return append([]string(nil), m.features...) }

// Samples returns a copy of the column identifiers.
func (m *FeatureMatrix) Samples() []string { return append([]string(nil), m.samples...) }

func (m *FeatureMatrix) Feature(i int) string { return m.features[i] }

func (m *FeatureMatrix) At(i, j int) float64 { return m.data.At(i, j) }

// Row returns a copy of row i.
func (m *FeatureMatrix) Row(i int) []float64 {
	return append([]float64(nil), m.data.RawRowView(i)...)
}

// RawRow returns the backing slice of row i. Callers must not modify it.
func (m *FeatureMatrix) RawRow(i int) []float64 { return m.data.RawRowView(i) }

// Dense returns a copy of the underlying data.
func (m *FeatureMatrix) Dense() *mat.Dense { return mat.DenseCopyOf(m.data) }

// Clone deep-copies the matrix.
func (m *FeatureMatrix) Clone() *FeatureMatrix {
	return &FeatureMatrix{
		name:     m.name,
		features: m.Features(),
		samples:  m.Samples(),
		data:     mat.DenseCopyOf(m.data),
	}
}

// WithData returns a matrix with the same labels over new data of identical shape.
func (m *FeatureMatrix) WithData(name string, data *mat.Dense) (*FeatureMatrix, error) {
	return NewFeatureMatrixFromDense(name, m.features, m.samples, data)
}

// SelectSamples returns the columns named in samples, in that order.
func (m *FeatureMatrix) SelectSamples(samples []string) (*FeatureMatrix, error) {
	if len(samples) == 0 {
		return nil, core.NewInvalidMatrixError(m.name, "no samples selected")
	}
	index := make(map[string]int, len(m.samples))
	for j, s := range m.samples {
		index[s] = j
	}
	out := mat.NewDense(m.Rows(), len(samples), nil)
	for k, s := range samples {
		j, ok := index[s]
		if !ok {
			return nil, core.NewInvalidMatrixError(m.name, fmt.Sprintf("unknown sample %q", s))
		}
		for i := 0; i < m.Rows(); i++ {
			out.Set(i, k, m.data.At(i, j))
		}
	}
	return NewFeatureMatrixFromDense(m.name, m.features, samples, out)
}

// DropZeroRows removes rows that are zero in every sample and returns the ids
// that were dropped. The result is nil when every row was dropped.
func (m *FeatureMatrix) DropZeroRows() (*FeatureMatrix, []string) {
	var keep []int
	var dropped []string
	for i := range m.features {
		if allZero(m.data.RawRowView(i)) {
			dropped = append(dropped, m.features[i])
			continue
		}
		keep = append(keep, i)
	}
	if len(dropped) == 0 {
		return m, nil
	}
	if len(keep) == 0 {
		return nil, dropped
	}
	features := make([]string, len(keep))
	out := mat.NewDense(len(keep), m.Cols(), nil)
	for k, i := range keep {
		features[k] = m.features[i]
		out.SetRow(k, m.data.RawRowView(i))
	}
	return &FeatureMatrix{name: m.name, features: features, samples: m.Samples(), data: out}, dropped
}

// Fingerprint identifies the exact labels and values of the matrix.
func (m *FeatureMatrix) Fingerprint() core.Hash {
	flat := make([]float64, 0, m.Rows()*m.Cols())
	for i := 0; i < m.Rows(); i++ {
		flat = append(flat, m.data.RawRowView(i)...)
	}
	return core.ComputeMatrixHash(m.features, m.samples, flat)
}

func allZero(row []float64) bool {
	for _, v := range row {
		if v != 0 {
			return false
		}
	}
	return true
}
