package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"corromics/domain/core"
	"corromics/domain/omics"
)

// unnamedIndex is the header pandas writes for an unnamed index column.
const unnamedIndex = "Unnamed: 0"

// Table is a header plus string cells. Every row has len(Header) cells.
type Table struct {
	Source string
	Header []string
	Rows   [][]string
}

// newTable trims cells, pads short rows, drops rows that are entirely empty
// and drops the unnamed index column.
func newTable(raw [][]string) *Table {
	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := &Table{Header: header}
	for _, r := range raw[1:] {
		row := make([]string, len(header))
		empty := true
		for j := range row {
			if j < len(r) {
				row[j] = strings.TrimSpace(r[j])
			}
			if row[j] != "" {
				empty = false
			}
		}
		if !empty {
			t.Rows = append(t.Rows, row)
		}
	}

	if i, ok := t.Column(unnamedIndex); ok {
		t = t.dropColumn(i)
	}
	return t
}

// NewTable builds a table from a header and rows, cleaned like a read table.
func NewTable(header []string, rows [][]string) *Table {
	return newTable(append([][]string{header}, rows...))
}

func (t *Table) Len() int { return len(t.Rows) }

// Column returns the position of name in the header.
func (t *Table) Column(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Values returns a copy of one column.
func (t *Table) Values(name string) ([]string, error) {
	i, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: column %q not found", core.ErrInvalidMatrix, name)
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Select keeps the named columns in the given order.
func (t *Table) Select(columns []string) (*Table, error) {
	idx := make([]int, len(columns))
	for k, c := range columns {
		i, ok := t.Column(c)
		if !ok {
			return nil, fmt.Errorf("%w: column %q not found", core.ErrInvalidMatrix, c)
		}
		idx[k] = i
	}
	out := &Table{Source: t.Source, Header: append([]string(nil), columns...)}
	for _, row := range t.Rows {
		nr := make([]string, len(idx))
		for k, i := range idx {
			nr[k] = row[i]
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}

// Rename returns a copy with every header passed through fn.
func (t *Table) Rename(fn func(string) string) *Table {
	out := &Table{Source: t.Source, Header: make([]string, len(t.Header)), Rows: t.Rows}
	for i, h := range t.Header {
		out.Header[i] = fn(h)
	}
	return out
}

func (t *Table) dropColumn(i int) *Table {
	out := &Table{Source: t.Source}
	out.Header = append(append([]string(nil), t.Header[:i]...), t.Header[i+1:]...)
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, append(append([]string(nil), row[:i]...), row[i+1:]...))
	}
	return out
}

// NumericColumns lists the columns, other than those in exclude, whose
// non-missing cells all parse as numbers. complete reports whether the column
// has no missing cells.
func (t *Table) NumericColumns(exclude ...string) (columns []string, complete []bool) {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	for i, h := range t.Header {
		if skip[h] {
			continue
		}
		numeric, full, seen := true, true, false
		for _, row := range t.Rows {
			if IsMissing(row[i]) {
				full = false
				continue
			}
			if _, err := parseNumber(row[i]); err != nil {
				numeric = false
				break
			}
			seen = true
		}
		if numeric && seen {
			columns = append(columns, h)
			complete = append(complete, full)
		}
	}
	return columns, complete
}

// FeatureMatrix converts the table into a feature matrix whose rows are
// identified by indexColumn (the first column when empty). With no explicit
// samples, every complete numeric column becomes a sample; numeric columns
// with missing cells are left out. Explicit samples must be complete.
func (t *Table) FeatureMatrix(name, indexColumn string, samples []string) (*omics.FeatureMatrix, error) {
	if len(t.Header) == 0 {
		return nil, core.NewInvalidMatrixError(name, "table has no columns")
	}
	if indexColumn == "" {
		indexColumn = t.Header[0]
	}
	ids, err := t.Values(indexColumn)
	if err != nil {
		return nil, err
	}

	if len(samples) == 0 {
		cols, complete := t.NumericColumns(indexColumn)
		for k, c := range cols {
			if complete[k] {
				samples = append(samples, c)
			}
		}
	}
	if len(samples) == 0 {
		return nil, core.NewInvalidMatrixError(name, "no numeric sample columns")
	}

	idx := make([]int, len(samples))
	for k, s := range samples {
		i, ok := t.Column(s)
		if !ok {
			return nil, core.NewInvalidMatrixError(name, fmt.Sprintf("sample column %q not found", s))
		}
		idx[k] = i
	}

	values := make([][]float64, len(t.Rows))
	for r, row := range t.Rows {
		values[r] = make([]float64, len(idx))
		for k, i := range idx {
			if IsMissing(row[i]) {
				return nil, core.NewInvalidMatrixError(name, fmt.Sprintf("missing value for %s in sample %s", ids[r], samples[k]))
			}
			v, err := parseNumber(row[i])
			if err != nil {
				return nil, core.NewInvalidMatrixError(name, fmt.Sprintf("non-numeric value %q for %s in sample %s", row[i], ids[r], samples[k]))
			}
			values[r][k] = v
		}
	}
	return omics.NewFeatureMatrix(name, ids, samples, values)
}

var missingTokens = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true, "#n/a": true,
}

// IsMissing reports whether a cell holds no value.
func IsMissing(cell string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(cell))]
}

func parseNumber(cell string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}
