package pipeline

import (
	"time"

	"corromics/domain/core"
	"corromics/domain/omics"
	"corromics/internal/correlation"
	"corromics/internal/fdr"
)

// Shape is a row/column count.
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Analysis is the complete, immutable result of one session.
type Analysis struct {
	ID        core.RunID `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Seed      int64      `json:"seed"`
	BinWidth  float64    `json:"bin_width"`

	Metabolome      omics.MatrixSummary `json:"metabolome"`
	Genome          omics.MatrixSummary `json:"genome"`
	DroppedFeatures []string            `json:"dropped_features,omitempty"`
	SharedSamples   []string            `json:"shared_samples"`

	TargetShape       Shape     `json:"target_shape"`
	DecoyShape        Shape     `json:"decoy_shape"`
	TargetFingerprint core.Hash `json:"target_fingerprint"`
	DecoyFingerprint  core.Hash `json:"decoy_fingerprint"`

	Target   *correlation.LongTable `json:"-"`
	Decoy    *correlation.LongTable `json:"-"`
	FDR      *fdr.Result            `json:"-"`
	Cutoffs  []fdr.Cutoff           `json:"-"`
	Advisory fdr.Advisory           `json:"advisory"`

	TargetInvalid int           `json:"target_invalid"`
	DecoyInvalid  int           `json:"decoy_invalid"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Table returns the long table of the given run.
func (a *Analysis) Table(kind core.RunKind) *correlation.LongTable {
	if kind == core.RunDecoy {
		return a.Decoy
	}
	return a.Target
}

// Pairs is the record count of each run.
func (a *Analysis) Pairs() int {
	if a.Target == nil {
		return 0
	}
	return a.Target.Len()
}
