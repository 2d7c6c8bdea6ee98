package api

import (
	"math"

	"corromics/domain/omics"
	"corromics/internal/fdr"
	"corromics/internal/pipeline"
)

// MatrixPayload is a feature matrix in a request body.
type MatrixPayload struct {
	Features []string    `json:"features"`
	Samples  []string    `json:"samples"`
	Values   [][]float64 `json:"values"`
}

func (m MatrixPayload) matrix(name string) (*omics.FeatureMatrix, error) {
	return omics.NewFeatureMatrix(name, m.Features, m.Samples, m.Values)
}

// AnalyzeRequest is the body of POST /api/analyses. Seed and BinWidth
// override the server configuration for this analysis only.
type AnalyzeRequest struct {
	Metabolome MatrixPayload `json:"metabolome"`
	Genome     MatrixPayload `json:"genome"`
	Seed       *int64        `json:"seed,omitempty"`
	BinWidth   *float64      `json:"bin_width,omitempty"`
}

// nullable maps NaN and infinities to JSON null.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// CutoffResponse is a suggested score cutoff; a side with no qualifying bin
// is null.
type CutoffResponse struct {
	ThresholdPercent float64  `json:"threshold_percent"`
	Negative         *float64 `json:"negative"`
	Positive         *float64 `json:"positive"`
}

func cutoffResponses(cs []fdr.Cutoff) []CutoffResponse {
	out := make([]CutoffResponse, len(cs))
	for i, c := range cs {
		out[i] = CutoffResponse{
			ThresholdPercent: c.ThresholdPercent,
			Negative:         nullable(c.Negative),
			Positive:         nullable(c.Positive),
		}
	}
	return out
}

// AnalysisResponse is the summary of a stored analysis.
type AnalysisResponse struct {
	*pipeline.Analysis
	Cutoffs []CutoffResponse  `json:"cutoffs"`
	Links   map[string]string `json:"links"`
}

func analysisResponse(a *pipeline.Analysis) AnalysisResponse {
	base := "/api/analyses/" + a.ID.String()
	return AnalysisResponse{
		Analysis: a,
		Cutoffs:  cutoffResponses(a.Cutoffs),
		Links: map[string]string{
			"self":      base,
			"fdr":       base + "/fdr",
			"target":    base + "/scores/target",
			"decoy":     base + "/scores/decoy",
			"histogram": base + "/charts/histogram.svg",
			"fdr_curve": base + "/charts/fdr.svg",
			"report":    base + "/report",
			"workbook":  base + "/workbook",
		},
	}
}

// BinResponse is one FDR bin; FDR is null where the zero-denominator policy
// stored NaN.
type BinResponse struct {
	RangeMin    float64  `json:"range_min"`
	RangeMax    float64  `json:"range_max"`
	TargetCount int      `json:"target_count"`
	DecoyCount  int      `json:"decoy_count"`
	CumTarget   int      `json:"cum_target"`
	CumDecoy    int      `json:"cum_decoy"`
	FDR         *float64 `json:"fdr"`
	Defined     bool     `json:"defined"`
	Side        fdr.Side `json:"side"`
}

// FDRResponse is the body of GET /api/analyses/{id}/fdr.
type FDRResponse struct {
	BinWidth   float64          `json:"bin_width"`
	ZeroPolicy fdr.ZeroPolicy   `json:"zero_policy"`
	Bins       []BinResponse    `json:"bins"`
	Cutoffs    []CutoffResponse `json:"cutoffs"`
}

func fdrResponse(a *pipeline.Analysis) FDRResponse {
	t := a.FDR.Table
	out := FDRResponse{
		BinWidth:   t.BinWidth,
		ZeroPolicy: t.ZeroPolicy,
		Bins:       make([]BinResponse, len(t.Bins)),
		Cutoffs:    cutoffResponses(a.Cutoffs),
	}
	for i, b := range t.Bins {
		out.Bins[i] = BinResponse{
			RangeMin:    b.RangeMin,
			RangeMax:    b.RangeMax,
			TargetCount: b.TargetCount,
			DecoyCount:  b.DecoyCount,
			CumTarget:   b.CumTarget,
			CumDecoy:    b.CumDecoy,
			FDR:         nullable(b.FDR),
			Defined:     b.Defined,
			Side:        b.Side,
		}
	}
	return out
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
