package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corromics/adapters/chart"
	"corromics/adapters/export"
	"corromics/adapters/tabular"
	"corromics/domain/omics"
	"corromics/internal/fdr"
	"corromics/internal/metrics"
	"corromics/internal/pipeline"
	"corromics/internal/report"
)

type analyzeOptions struct {
	metabolome      string
	genome          string
	metabolomeIndex string
	genomeIndex     string
	mzmine          bool
	taxLevel        string
	metadata        string
	metadataIndex   string
	filterColumn    string
	filterValues    []string
	seed            int64
	workers         int
	binWidth        float64
	out             string
	gzip            bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	o := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Correlate a metabolome table with a genome table and estimate the FDR",
		Long: `Reads a metabolomics quantification table and a genomic abundance table
(csv, tsv, txt or xlsx, optionally .gz), correlates every pair against a
decoy genome and writes the scores, the FDR table, charts, a report and an
Excel workbook into --out.`,
		Example: `  corromics analyze --metabolome quant.csv --genome asv.tsv --out results
  corromics analyze --metabolome quant.csv --mzmine --metadata md.tsv \
      --filter-column Treatment --filter-values control \
      --genome taxa.tsv.gz --tax-level Genus --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				a.cfg.Analysis.Seed = o.seed
			}
			if cmd.Flags().Changed("workers") {
				a.cfg.Analysis.Workers = o.workers
			}
			if cmd.Flags().Changed("bin-width") {
				a.cfg.Analysis.BinWidth = o.binWidth
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return runAnalyze(cmd, a, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.metabolome, "metabolome", "", "metabolomics quantification table")
	f.StringVar(&o.genome, "genome", "", "genomic abundance table")
	f.StringVar(&o.metabolomeIndex, "metabolome-index", "", "metabolite id column (default: first column)")
	f.StringVar(&o.genomeIndex, "genome-index", "", "genomic feature id column (default: first column)")
	f.BoolVar(&o.mzmine, "mzmine", false, "keep only .mzML/.mzXML sample columns of the metabolome and clean their names")
	f.StringVar(&o.taxLevel, "tax-level", "", "bin the genome table to this taxonomic column before correlating")
	f.StringVar(&o.metadata, "metadata", "", "sample metadata table")
	f.StringVar(&o.metadataIndex, "metadata-index", tabular.DefaultMetadataIndex, "metadata column naming the samples")
	f.StringVar(&o.filterColumn, "filter-column", "", "metadata column to filter samples on")
	f.StringSliceVar(&o.filterValues, "filter-values", nil, "metadata values to keep (with --filter-column)")
	f.Int64Var(&o.seed, "seed", 42, "decoy permutation seed")
	f.IntVar(&o.workers, "workers", 0, "correlation workers (0: all CPUs)")
	f.Float64Var(&o.binWidth, "bin-width", 0.001, "FDR histogram bin width")
	f.StringVarP(&o.out, "out", "o", "corromics_results", "output directory")
	f.BoolVar(&o.gzip, "gzip", false, "gzip the TSV outputs")
	_ = cmd.MarkFlagRequired("metabolome")
	_ = cmd.MarkFlagRequired("genome")
	return cmd
}

func readTable(path string, logger *zap.Logger) (*tabular.Table, error) {
	r, err := tabular.NewReader(path, logger)
	if err != nil {
		return nil, err
	}
	return r.Read()
}

// loadInputs reads, cleans and aligns both tables.
func loadInputs(o *analyzeOptions, logger *zap.Logger) (*omics.FeatureMatrix, *omics.FeatureMatrix, error) {
	mt, err := readTable(o.metabolome, logger)
	if err != nil {
		return nil, nil, err
	}
	if o.mzmine {
		index := o.metabolomeIndex
		if index == "" && len(mt.Header) > 0 {
			index = mt.Header[0]
		}
		mt = tabular.CleanQuantTable(mt, index)
	}
	metabolome, err := mt.FeatureMatrix("metabolome", o.metabolomeIndex, nil)
	if err != nil {
		return nil, nil, err
	}

	gt, err := readTable(o.genome, logger)
	if err != nil {
		return nil, nil, err
	}
	var genome *omics.FeatureMatrix
	if o.taxLevel != "" {
		ranks := tabular.TaxonomicColumns(gt.Header)
		index := o.genomeIndex
		if index == "" && !slices.Contains(ranks, gt.Header[0]) {
			index = gt.Header[0]
		}
		binned, err := tabular.BinByTaxonomicLevel(gt, ranks, o.taxLevel, index)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("binned genome",
			zap.String("level", o.taxLevel),
			zap.Int("rows", gt.Len()),
			zap.Int("groups", len(binned.Groups)))
		genome, err = binned.Matrix("genome")
		if err != nil {
			return nil, nil, err
		}
	} else {
		genome, err = gt.FeatureMatrix("genome", o.genomeIndex, nil)
		if err != nil {
			return nil, nil, err
		}
	}

	if o.metadata == "" {
		if o.filterColumn != "" {
			return nil, nil, fmt.Errorf("--filter-column needs --metadata")
		}
		return metabolome, genome, nil
	}

	mdt, err := readTable(o.metadata, logger)
	if err != nil {
		return nil, nil, err
	}
	md, err := tabular.NewMetadata(mdt, o.metadataIndex)
	if err != nil {
		return nil, nil, err
	}
	metabolome, md, rep, err := tabular.AlignWithMetadata(metabolome, md)
	if err != nil {
		return nil, nil, err
	}
	if rep.Changed() {
		logger.Warn("samples dropped while aligning with metadata",
			zap.Strings("missing_metadata", rep.DroppedFromTable),
			zap.Strings("missing_in_table", rep.DroppedFromMetadata))
	}
	if o.filterColumn != "" {
		if metabolome, _, err = tabular.FilterSamples(metabolome, md, o.filterColumn, o.filterValues); err != nil {
			return nil, nil, err
		}
		logger.Info("filtered samples",
			zap.String("column", o.filterColumn),
			zap.Strings("values", o.filterValues),
			zap.Int("samples", metabolome.Cols()))
	}
	return metabolome, genome, nil
}

func runAnalyze(cmd *cobra.Command, a *app, o *analyzeOptions) error {
	logger := a.logger.Named("analyze")

	metabolome, genome, err := loadInputs(o, logger)
	if err != nil {
		return err
	}
	adv := fdr.EstimateRunTime(metabolome.Rows(), genome.Rows())
	fmt.Fprintf(cmd.OutOrStdout(), "%s.\n", adv.Message)

	opts, err := pipeline.OptionsFromConfig(a.cfg.Analysis)
	if err != nil {
		return err
	}
	analyzer, err := pipeline.NewAnalyzer(opts, a.logger, metrics.NewRecorder())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	result, err := analyzer.Run(ctx, metabolome, genome)
	if err != nil {
		return err
	}

	if err := writeOutputs(o, result); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "analysis %s: %d pairs per run, %d invalid target pairs, %s\n",
		result.ID, result.Pairs(), result.TargetInvalid, result.Elapsed.Round(time.Millisecond))
	for _, c := range result.Cutoffs {
		fmt.Fprintf(w, "  %g%% FDR: negative <= %s, positive >= %s\n", c.ThresholdPercent, cutoffText(c.Negative), cutoffText(c.Positive))
	}
	fmt.Fprintf(w, "results written to %s\n", o.out)
	return nil
}

func cutoffText(v float64) string {
	if math.IsNaN(v) {
		return "none"
	}
	return fmt.Sprintf("%.3f", v)
}

// writeOutputs writes every result file into o.out.
func writeOutputs(o *analyzeOptions, result *pipeline.Analysis) error {
	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", o.out, err)
	}
	tsv := func(name string) string {
		if o.gzip {
			name += ".gz"
		}
		return filepath.Join(o.out, name)
	}

	outputs := []struct {
		path  string
		write func(io.Writer) error
	}{
		{tsv("target_scores.tsv"), func(w io.Writer) error { return export.WriteLongTable(w, result.Target) }},
		{tsv("decoy_scores.tsv"), func(w io.Writer) error { return export.WriteLongTable(w, result.Decoy) }},
		{tsv("fdr.tsv"), func(w io.Writer) error { return export.WriteFDRTable(w, result.FDR.Table) }},
		{filepath.Join(o.out, "histogram.svg"), func(w io.Writer) error {
			return chart.RenderHistogram(w, result.FDR.Histogram, chart.FormatSVG)
		}},
		{filepath.Join(o.out, "fdr.svg"), func(w io.Writer) error {
			return chart.RenderFDRCurve(w, result.FDR.Curve, chart.FormatSVG)
		}},
		{filepath.Join(o.out, "report.md"), func(w io.Writer) error {
			_, err := io.WriteString(w, report.Markdown(result))
			return err
		}},
		{filepath.Join(o.out, "results.xlsx"), func(w io.Writer) error { return export.WriteWorkbook(w, result) }},
	}
	for _, out := range outputs {
		if err := export.WriteFile(out.path, out.write); err != nil {
			return err
		}
	}
	return nil
}
