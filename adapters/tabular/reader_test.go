package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	gzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"corromics/internal/errors"
)

const quantCSV = `Unnamed: 0,row ID,a.mzML Peak area,b.mzML Peak area,c.mzXML Peak area
0,101,1.5,2,3
1,102,0,0,0
2,103,4,5,6
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path       string
		format     Format
		compressed bool
		wantErr    bool
	}{
		{"quant.csv", FormatCSV, false, false},
		{"QUANT.TSV", FormatTSV, false, false},
		{"quant.txt", FormatTSV, false, false},
		{"quant.csv.gz", FormatCSV, true, false},
		{"meta.xlsx", FormatXLSX, false, false},
		{"quant.parquet", "", false, true},
		{"quant", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, compressed, err := DetectFormat(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
				assert.Contains(t, err.Error(), "Allowed formats")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.compressed, compressed)
		})
	}
}

func TestReadCSVDropsUnnamedIndex(t *testing.T) {
	table, err := ReadTable(writeFile(t, "quant.csv", quantCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"row ID", "a.mzML Peak area", "b.mzML Peak area", "c.mzXML Peak area"}, table.Header)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"103", "4", "5", "6"}, table.Rows[2])
	assert.NotEmpty(t, table.Source)
}

func TestReadTSVAndText(t *testing.T) {
	content := "id\ts1\ts2\nASV_1\t1\t2\nASV_2\t3\t4\n"
	for _, name := range []string{"genome.tsv", "genome.txt"} {
		table, err := ReadTable(writeFile(t, name, content))
		require.NoError(t, err, name)
		assert.Equal(t, []string{"id", "s1", "s2"}, table.Header)
		assert.Equal(t, 2, table.Len())
	}
}

func TestReadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quant.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(quantCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, "row ID", table.Header[0])
}

func TestReadCorruptGzip(t *testing.T) {
	_, err := ReadTable(writeFile(t, "quant.csv.gz", "not gzip"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReadExcel(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetList()[0]
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]interface{}{"filename", "Treatment"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]interface{}{"a.mzML", "control"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]interface{}{"b.mzML", "drug a"}))
	path := filepath.Join(t.TempDir(), "meta.xlsx")
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"filename", "Treatment"}, table.Header)
	assert.Equal(t, [][]string{{"a.mzML", "control"}, {"b.mzML", "drug a"}}, table.Rows)
}

func TestReadErrors(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "CSV file not found")

	_, err = ReadTable(writeFile(t, "header.csv", "id,s1\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestDecodeRaggedRows(t *testing.T) {
	table, err := Decode(strings.NewReader("\ufeffid,s1,s2\nx,1\n,,\ny,2,3\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "s1", "s2"}, table.Header)
	assert.Equal(t, [][]string{{"x", "1", ""}, {"y", "2", "3"}}, table.Rows)
}
