// Package correlation computes every (metabolite, genomic feature) Pearson
// association of a combined matrix, one task per genomic feature.
package correlation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"corromics/domain/core"
	"corromics/domain/omics"
	"corromics/internal/logging"
)

// cancelCheckEvery is how many metabolites a task scores between context checks.
const cancelCheckEvery = 512

// Options configures an Engine.
type Options struct {
	// Workers bounds the number of concurrent tasks. Zero means GOMAXPROCS.
	Workers int
	// TaskTimeout bounds a single genomic feature's task. Zero disables it.
	TaskTimeout time.Duration
}

// Engine fans one task per genomic feature out to a bounded pool.
type Engine struct {
	workers     int
	taskTimeout time.Duration
	logger      *zap.Logger
	score       func(x, y []float64) (float64, float64, error)
}

// NewEngine creates an engine.
func NewEngine(opts Options, logger *zap.Logger) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		workers:     workers,
		taskTimeout: opts.TaskTimeout,
		logger:      logging.OrNop(logger).Named("correlation"),
		score:       Pearson,
	}
}

func (e *Engine) Workers() int { return e.workers }

// FeatureResult holds the records of one genomic feature, one per metabolite
// in metabolite order.
type FeatureResult struct {
	Variable string   `json:"variable"`
	Records  []Record `json:"records"`
	Invalid  int      `json:"invalid"`
}

// Result is the complete output of one run, keyed by genomic feature id.
type Result struct {
	Metabolites []string
	Variables   []string
	ByVariable  map[string]*FeatureResult
	Invalid     int
	Elapsed     time.Duration
}

// Pairs is the number of records in the result.
func (r *Result) Pairs() int { return len(r.Metabolites) * len(r.Variables) }

// Run scores every metabolite against every genomic feature of combined. The
// source matrices identify which combined rows belong to which assay.
//
// Degenerate pairs are kept as invalid records. Any other task failure fails
// the whole run with core.ErrWorkerFailure and no partial result.
func (e *Engine) Run(ctx context.Context, combined *omics.CombinedMatrix, metabolome, genome *omics.FeatureMatrix) (*Result, error) {
	start := time.Now()
	metabolites, variables, err := splitRows(combined, metabolome, genome)
	if err != nil {
		return nil, err
	}
	if combined.Cols() < 2 {
		return nil, core.NewInvalidMatrixError("combined", fmt.Sprintf("%d shared samples, need at least 2", combined.Cols()))
	}

	offset := len(metabolites)
	results := make([]*FeatureResult, len(variables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for k := range variables {
		g.Go(func() error {
			res, err := e.task(gctx, combined, offset, offset+k, variables[k])
			if err != nil {
				return err
			}
			results[k] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Error("correlation run aborted", zap.Error(err))
		return nil, err
	}

	out := &Result{
		Metabolites: metabolites,
		Variables:   variables,
		ByVariable:  make(map[string]*FeatureResult, len(variables)),
		Elapsed:     time.Since(start),
	}
	for _, res := range results {
		out.ByVariable[res.Variable] = res
		out.Invalid += res.Invalid
	}

	e.logger.Debug("correlation run complete",
		zap.Int("metabolites", len(metabolites)),
		zap.Int("features", len(variables)),
		zap.Int("pairs", out.Pairs()),
		zap.Int("invalid", out.Invalid),
		zap.Int("workers", e.workers),
		zap.Duration("elapsed", out.Elapsed))
	return out, nil
}

// task scores one genomic row against all metabolite rows. It only reads
// combined.
func (e *Engine) task(ctx context.Context, combined *omics.CombinedMatrix, metabolites, row int, variable string) (res *FeatureResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.NewWorkerFailure(variable, fmt.Errorf("panic: %v", r))
		}
	}()

	if e.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.taskTimeout)
		defer cancel()
	}

	y := combined.RawRow(row)
	records := make([]Record, metabolites)
	pvalues := make([]float64, metabolites)
	invalid := 0

	checkCtx := func() error {
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			return core.NewWorkerFailure(variable, err)
		}
		return err
	}

	for i := 0; i < metabolites; i++ {
		if i%cancelCheckEvery == 0 {
			if err := checkCtx(); err != nil {
				return nil, err
			}
		}

		r, p, err := e.score(combined.RawRow(i), y)
		switch {
		case err == nil:
			records[i] = Record{Estimate: r, PValue: p, RSquared: r * r, Valid: true}
			pvalues[i] = p
		case errors.Is(err, core.ErrDegenerateFeature):
			records[i] = InvalidRecord()
			pvalues[i] = records[i].PValue
			invalid++
		default:
			return nil, core.NewWorkerFailure(variable, err)
		}
	}

	// A timeout that fires during the last stretch of scores still fails the task.
	if err := checkCtx(); err != nil {
		return nil, err
	}

	for i, q := range BenjaminiHochberg(pvalues) {
		records[i].FDRPValue = q
	}
	return &FeatureResult{Variable: variable, Records: records, Invalid: invalid}, nil
}

// splitRows recovers the metabolite and genomic ids of combined and checks them
// against the source matrices.
func splitRows(combined *omics.CombinedMatrix, metabolome, genome *omics.FeatureMatrix) ([]string, []string, error) {
	if combined.MetaboliteRows() != metabolome.Rows() || combined.GenomicRows() != genome.Rows() {
		return nil, nil, core.NewInvalidMatrixError("combined", fmt.Sprintf(
			"row ranges %d+%d do not match sources %d+%d",
			combined.MetaboliteRows(), combined.GenomicRows(), metabolome.Rows(), genome.Rows()))
	}

	metabolites := make([]string, combined.MetaboliteRows())
	for i := range metabolites {
		row := combined.Row(i)
		if row.Assay != omics.AssayMetabolome || row.FeatureID != metabolome.Feature(i) {
			return nil, nil, core.NewInvalidMatrixError("combined", fmt.Sprintf("row %d is not metabolite %s", i, metabolome.Feature(i)))
		}
		metabolites[i] = row.FeatureID
	}

	variables := make([]string, combined.GenomicRows())
	for k := range variables {
		row := combined.Row(len(metabolites) + k)
		if row.Assay != omics.AssayGenome || row.FeatureID != genome.Feature(k) {
			return nil, nil, core.NewInvalidMatrixError("combined", fmt.Sprintf("row %d is not genomic feature %s", row.Index, genome.Feature(k)))
		}
		variables[k] = row.FeatureID
	}
	return metabolites, variables, nil
}
