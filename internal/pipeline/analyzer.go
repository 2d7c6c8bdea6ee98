// Package pipeline runs one analysis session: combine, build the decoy, score
// target and decoy, reshape, and estimate the FDR.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"corromics/domain/core"
	"corromics/domain/omics"
	"corromics/internal/correlation"
	"corromics/internal/decoy"
	"corromics/internal/fdr"
	"corromics/internal/logging"
	"corromics/internal/metrics"
)

// Analyzer wires the core components with fixed options.
type Analyzer struct {
	opts      Options
	engine    *correlation.Engine
	decoys    *decoy.Generator
	estimator *fdr.Estimator
	metrics   *metrics.Recorder
	logger    *zap.Logger
}

// NewAnalyzer validates opts and builds the components. rec may be nil.
func NewAnalyzer(opts Options, logger *zap.Logger, rec *metrics.Recorder) (*Analyzer, error) {
	logger = logging.OrNop(logger)
	estimator, err := fdr.NewEstimator(opts.FDR, logger)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		opts:      opts,
		engine:    correlation.NewEngine(opts.Engine, logger),
		decoys:    decoy.NewGenerator(opts.Seed, logger),
		estimator: estimator,
		metrics:   rec,
		logger:    logger.Named("pipeline"),
	}, nil
}

func (a *Analyzer) Options() Options { return a.opts }

// Run executes the whole session. Alignment and worker failures abort it with
// no partial output.
func (a *Analyzer) Run(ctx context.Context, metabolome, genome *omics.FeatureMatrix) (analysis *Analysis, err error) {
	start := time.Now()
	id := core.NewRunID()
	log := a.logger.With(zap.String("analysis_id", id.String()))
	defer func() { a.metrics.AnalysisFinished(err) }()

	if metabolome == nil || genome == nil {
		return nil, core.NewInvalidMatrixError("input", "both metabolome and genome matrices are required")
	}
	log.Info("analysis started",
		zap.Int("metabolites", metabolome.Rows()),
		zap.Int("genomic_features", genome.Rows()),
		zap.Int64("seed", a.opts.Seed))

	out := &Analysis{
		ID:         id,
		CreatedAt:  start.UTC(),
		Seed:       a.opts.Seed,
		BinWidth:   a.opts.FDR.BinWidth,
		Metabolome: metabolome.Summarize(),
	}

	if a.opts.DropZeroRows {
		kept, dropped := genome.DropZeroRows()
		a.metrics.ObserveDropped(len(dropped))
		if kept == nil {
			return nil, fmt.Errorf("%w: all %d genomic features are zero in every sample", core.ErrNoInformativeFeatures, genome.Rows())
		}
		if len(dropped) > 0 {
			log.Info("dropped all-zero genomic features", zap.Int("dropped", len(dropped)), zap.Int("kept", kept.Rows()))
		}
		genome, out.DroppedFeatures = kept, dropped
	}
	out.Genome = genome.Summarize()

	stage := time.Now()
	target, err := omics.Combine(metabolome, genome)
	if err != nil {
		log.Warn("combine failed", zap.Error(err))
		return nil, err
	}
	decoyCombined, decoyGenome, err := a.decoys.Combined(metabolome, genome)
	if err != nil {
		return nil, err
	}
	a.metrics.ObserveStage("combine", time.Since(stage))

	out.SharedSamples = target.Samples()
	out.TargetShape = Shape{Rows: target.Rows(), Cols: target.Cols()}
	out.DecoyShape = Shape{Rows: decoyCombined.Rows(), Cols: decoyCombined.Cols()}
	out.TargetFingerprint = target.Fingerprint()
	out.DecoyFingerprint = decoyCombined.Fingerprint()

	stage = time.Now()
	var targetRes, decoyRes *correlation.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		targetRes, err = a.engine.Run(gctx, target, metabolome, genome)
		return err
	})
	g.Go(func() error {
		var err error
		decoyRes, err = a.engine.Run(gctx, decoyCombined, metabolome, decoyGenome)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("correlation failed", zap.Error(err))
		return nil, err
	}
	a.metrics.ObserveStage("correlate", time.Since(stage))

	out.Target = correlation.Melt(core.RunTarget, targetRes)
	out.Decoy = correlation.Melt(core.RunDecoy, decoyRes)
	out.TargetInvalid = targetRes.Invalid
	out.DecoyInvalid = decoyRes.Invalid
	a.metrics.ObserveRun(core.RunTarget, out.Target.Len(), out.TargetInvalid)
	a.metrics.ObserveRun(core.RunDecoy, out.Decoy.Len(), out.DecoyInvalid)
	log.Info("correlation runs complete",
		zap.Int("pairs", out.Target.Len()),
		zap.Int("target_invalid", out.TargetInvalid),
		zap.Int("decoy_invalid", out.DecoyInvalid),
		zap.Duration("target_elapsed", targetRes.Elapsed),
		zap.Duration("decoy_elapsed", decoyRes.Elapsed))

	stage = time.Now()
	out.FDR, err = a.estimator.Estimate(out.Target, out.Decoy)
	if err != nil {
		return nil, err
	}
	out.Cutoffs = out.FDR.Table.SuggestCutoffs(a.opts.FDR.Thresholds)
	a.metrics.ObserveStage("fdr", time.Since(stage))

	out.Advisory = fdr.EstimateRunTime(metabolome.Rows(), genome.Rows())
	out.Elapsed = time.Since(start)
	a.metrics.ObserveStage("total", out.Elapsed)

	log.Info("analysis finished",
		zap.Int("fdr_bins", len(out.FDR.Table.Bins)),
		zap.Duration("elapsed", out.Elapsed))
	return out, nil
}
