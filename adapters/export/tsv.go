// Package export writes analysis results as tab-separated tables and Excel
// workbooks.
package export

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	gzip "github.com/klauspost/pgzip"

	"corromics/internal/correlation"
	"corromics/internal/errors"
	"corromics/internal/fdr"
)

var (
	longTableHeader = []string{"feature", "variable", "Estimate", "P-value", "BH-Corrected P-Value", "R2"}
	fdrTableHeader  = []string{"Range_min", "Range_max", "Target_counts", "Decoy_counts", "Cum_target", "Cum_decoy", "FDR", "Side"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteLongTable writes one row per correlation record. Invalid records keep
// NaN in every numeric column.
func WriteLongTable(w io.Writer, t *correlation.LongTable) error {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'
	if err := tw.Write(longTableHeader); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for _, r := range t.Rows {
		rec := []string{
			r.Feature,
			r.Variable,
			formatFloat(r.Estimate),
			formatFloat(r.PValue),
			formatFloat(r.FDRPValue),
			formatFloat(r.RSquared),
		}
		if err := tw.Write(rec); err != nil {
			return errors.Wrapf(err, "failed to write %s/%s", r.Feature, r.Variable)
		}
	}
	tw.Flush()
	return errors.Wrap(tw.Error(), "failed to flush long table")
}

// WriteFDRTable writes the negative then positive bins in ascending score
// order.
func WriteFDRTable(w io.Writer, t *fdr.Table) error {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'
	if err := tw.Write(fdrTableHeader); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for _, b := range t.Bins {
		rec := []string{
			formatFloat(b.RangeMin),
			formatFloat(b.RangeMax),
			strconv.Itoa(b.TargetCount),
			strconv.Itoa(b.DecoyCount),
			strconv.Itoa(b.CumTarget),
			strconv.Itoa(b.CumDecoy),
			formatFloat(b.FDR),
			string(b.Side),
		}
		if err := tw.Write(rec); err != nil {
			return errors.Wrap(err, "failed to write bin")
		}
	}
	tw.Flush()
	return errors.Wrap(tw.Error(), "failed to flush FDR table")
}

// WriteFile creates path and hands a writer to write. Paths ending in .gz are
// gzip-compressed.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	bw := bufio.NewWriter(f)
	var out io.Writer = bw
	var zw *gzip.Writer
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zw = gzip.NewWriter(bw)
		out = zw
	}

	if err := write(out); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return errors.Wrapf(err, "failed to compress %s", path)
		}
	}
	return errors.Wrapf(bw.Flush(), "failed to write %s", path)
}
