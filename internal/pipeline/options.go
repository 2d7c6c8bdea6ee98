package pipeline

import (
	"corromics/internal/config"
	"corromics/internal/correlation"
	"corromics/internal/errors"
	"corromics/internal/fdr"
)

// Options is everything one analysis session needs. It is passed explicitly;
// nothing is read from ambient state.
type Options struct {
	Seed         int64
	DropZeroRows bool
	Engine       correlation.Options
	FDR          fdr.Options
}

// DefaultOptions matches config.Default().
func DefaultOptions() Options {
	opts, _ := OptionsFromConfig(config.Default().Analysis)
	return opts
}

// OptionsFromConfig converts the analysis section of the configuration.
func OptionsFromConfig(cfg config.AnalysisConfig) (Options, error) {
	policy, err := fdr.ParseZeroPolicy(cfg.ZeroDenominator)
	if err != nil {
		return Options{}, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	f := fdr.DefaultOptions()
	f.ScoreMin = cfg.ScoreMin
	f.ScoreMax = cfg.ScoreMax
	f.BinWidth = cfg.BinWidth
	f.HistogramBinWidth = cfg.HistogramBinWidth
	f.Epsilon = cfg.Epsilon
	f.ZeroPolicy = policy
	f.Thresholds = append([]float64(nil), cfg.Thresholds...)
	f.Tolerance = cfg.Tolerance

	return Options{
		Seed:         cfg.Seed,
		DropZeroRows: cfg.DropZeroRows,
		Engine: correlation.Options{
			Workers:     cfg.Workers,
			TaskTimeout: cfg.TaskTimeout,
		},
		FDR: f,
	}, nil
}
