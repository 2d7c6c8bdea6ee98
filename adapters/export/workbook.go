package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"corromics/internal/correlation"
	"corromics/internal/errors"
	"corromics/internal/fdr"
	"corromics/internal/pipeline"
)

// Sheet names of the results workbook.
const (
	SheetTarget  = "Target"
	SheetDecoy   = "Decoy"
	SheetFDR     = "FDR"
	SheetSummary = "Summary"
)

// cell leaves NaN cells blank; Excel has no NaN.
func cell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func textCells(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

type sheetWriter struct {
	sw  *excelize.StreamWriter
	row int
}

func newSheetWriter(f *excelize.File, sheet string) (*sheetWriter, error) {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sheet %s", sheet)
	}
	return &sheetWriter{sw: sw}, nil
}

func (s *sheetWriter) add(values ...interface{}) error {
	s.row++
	if s.row > excelize.TotalRows {
		return errors.InvalidInput(fmt.Sprintf("table exceeds the %d row limit of a worksheet, export it as TSV instead", excelize.TotalRows))
	}
	ref, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.sw.SetRow(ref, values)
}

func writeLongSheet(f *excelize.File, sheet string, t *correlation.LongTable) error {
	s, err := newSheetWriter(f, sheet)
	if err != nil {
		return err
	}
	if err := s.add(textCells(longTableHeader)...); err != nil {
		return err
	}
	if t != nil {
		for _, r := range t.Rows {
			if err := s.add(r.Feature, r.Variable, cell(r.Estimate), cell(r.PValue), cell(r.FDRPValue), cell(r.RSquared)); err != nil {
				return err
			}
		}
	}
	return s.sw.Flush()
}

func writeFDRSheet(f *excelize.File, t *fdr.Table) error {
	s, err := newSheetWriter(f, SheetFDR)
	if err != nil {
		return err
	}
	if err := s.add(textCells(fdrTableHeader)...); err != nil {
		return err
	}
	if t != nil {
		for _, b := range t.Bins {
			if err := s.add(b.RangeMin, b.RangeMax, b.TargetCount, b.DecoyCount, b.CumTarget, b.CumDecoy, cell(b.FDR), string(b.Side)); err != nil {
				return err
			}
		}
	}
	return s.sw.Flush()
}

func writeSummarySheet(f *excelize.File, a *pipeline.Analysis) error {
	s, err := newSheetWriter(f, SheetSummary)
	if err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Analysis", a.ID.String()},
		{"Created", a.CreatedAt.UTC().Format(time.RFC3339)},
		{"Seed", a.Seed},
		{"Bin width", a.BinWidth},
		{"Metabolites", a.Metabolome.Features},
		{"Genomic features", a.Genome.Features},
		{"Dropped all-zero features", len(a.DroppedFeatures)},
		{"Shared samples", len(a.SharedSamples)},
		{"Target pairs", a.Pairs()},
		{"Invalid target pairs", a.TargetInvalid},
		{"Invalid decoy pairs", a.DecoyInvalid},
		{"Run time estimate", a.Advisory.Estimate},
		{"Elapsed", a.Elapsed.String()},
		{},
		{"FDR threshold (%)", "Negative cutoff", "Positive cutoff"},
	}
	for _, c := range a.Cutoffs {
		rows = append(rows, []interface{}{c.ThresholdPercent, cell(c.Negative), cell(c.Positive)})
	}
	for _, r := range rows {
		if err := s.add(r...); err != nil {
			return err
		}
	}
	return s.sw.Flush()
}

// WriteWorkbook writes the target and decoy long tables, the FDR bin table and
// a summary sheet as one xlsx workbook.
func WriteWorkbook(w io.Writer, a *pipeline.Analysis) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetList()[0], SheetTarget); err != nil {
		return errors.Wrap(err, "failed to name sheet")
	}
	for _, name := range []string{SheetDecoy, SheetFDR, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "failed to add sheet %s", name)
		}
	}

	if err := writeLongSheet(f, SheetTarget, a.Target); err != nil {
		return err
	}
	if err := writeLongSheet(f, SheetDecoy, a.Decoy); err != nil {
		return err
	}
	var table *fdr.Table
	if a.FDR != nil {
		table = a.FDR.Table
	}
	if err := writeFDRSheet(f, table); err != nil {
		return err
	}
	if err := writeSummarySheet(f, a); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}
