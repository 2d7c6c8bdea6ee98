// Package tabular reads quantification and metadata tables from delimited
// text or Excel files and prepares them for analysis.
package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gzip "github.com/klauspost/pgzip"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"corromics/internal/errors"
	"corromics/internal/logging"
)

// Format is a supported table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// AllowedFormats is shown to users when a file is rejected.
const AllowedFormats = "Allowed formats: csv (comma separated), tsv (tab separated), txt (tab separated), xlsx (Excel file), optionally gzip-compressed (.gz)."

// DetectFormat maps a file name to its format and whether it is gzip-compressed.
func DetectFormat(path string) (Format, bool, error) {
	name := strings.ToLower(filepath.Base(path))
	compressed := strings.HasSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".gz")

	switch filepath.Ext(name) {
	case ".csv":
		return FormatCSV, compressed, nil
	case ".tsv", ".txt":
		return FormatTSV, compressed, nil
	case ".xlsx":
		return FormatXLSX, compressed, nil
	}
	return "", false, errors.InvalidInput(fmt.Sprintf("unsupported file %s. %s", filepath.Base(path), AllowedFormats))
}

// Reader handles reading delimited and Excel tables
type Reader struct {
	path       string
	format     Format
	compressed bool
	logger     *zap.Logger
}

// NewReader creates a reader for path; the format comes from the extension.
func NewReader(path string, logger *zap.Logger) (*Reader, error) {
	format, compressed, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		path:       path,
		format:     format,
		compressed: compressed,
		logger:     logging.OrNop(logger).Named("tabular"),
	}, nil
}

// ReadTable reads path without logging.
func ReadTable(path string) (*Table, error) {
	r, err := NewReader(path, nil)
	if err != nil {
		return nil, err
	}
	return r.Read()
}

// Read loads the whole table.
func (r *Reader) Read() (*Table, error) {
	start := time.Now()
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("%s file not found: %s", strings.ToUpper(string(r.format)), r.path))
		}
		return nil, errors.Wrapf(err, "failed to open %s", r.path)
	}
	defer f.Close()

	var src io.Reader = bufio.NewReader(f)
	if r.compressed {
		gz, err := gzip.NewReader(src)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "failed to decompress %s", r.path))
		}
		defer gz.Close()
		src = gz
	}

	t, err := Decode(src, r.format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", r.path)
	}
	t.Source = r.path

	r.logger.Info("table read",
		zap.String("path", r.path),
		zap.String("format", string(r.format)),
		zap.Bool("gzip", r.compressed),
		zap.Int("columns", len(t.Header)),
		zap.Int("rows", len(t.Rows)),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

// Decode parses a table of the given format from src.
func Decode(src io.Reader, format Format) (*Table, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readDelimited(src, ',')
	case FormatTSV:
		rows, err = readDelimited(src, '\t')
	case FormatXLSX:
		rows, err = readExcel(src)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported format %q. %s", format, AllowedFormats))
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput("table must have a header row and at least one data row")
	}
	return newTable(rows), nil
}

func readDelimited(src io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

// readExcel reads the first sheet of a workbook.
func readExcel(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}
