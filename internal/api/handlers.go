package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"corromics/adapters/chart"
	"corromics/adapters/export"
	"corromics/domain/core"
	"corromics/internal/errors"
	"corromics/internal/fdr"
	"corromics/internal/pipeline"
	"corromics/internal/report"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"analyses": s.store.Len(),
	})
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	metabolites, err := queryCount(r, "metabolites")
	if err != nil {
		s.writeError(w, err)
		return
	}
	features, err := queryCount(r, "features")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, fdr.EstimateRunTime(metabolites, features))
}

func queryCount(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.InvalidInput(fmt.Sprintf("query parameter %s must be a non-negative integer, got %q", name, raw))
	}
	return n, nil
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	stored := s.store.List()
	out := make([]AnalysisResponse, len(stored))
	for i, a := range stored {
		out[i] = analysisResponse(a)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// analyzerFor returns the shared analyzer unless the request overrides the
// seed or the bin width.
func (s *Server) analyzerFor(req AnalyzeRequest) (*pipeline.Analyzer, error) {
	if req.Seed == nil && req.BinWidth == nil {
		return s.analyzer, nil
	}
	opts := s.opts
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	if req.BinWidth != nil {
		opts.FDR.BinWidth = *req.BinWidth
	}
	a, err := pipeline.NewAnalyzer(opts, s.logger, s.metrics)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return a, nil
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req AnalyzeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	metabolome, err := req.Metabolome.matrix("metabolome")
	if err != nil {
		s.writeError(w, err)
		return
	}
	genome, err := req.Genome.matrix("genome")
	if err != nil {
		s.writeError(w, err)
		return
	}
	analyzer, err := s.analyzerFor(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.events.Publish(Event{Type: EventAnalysisStarted, Data: map[string]interface{}{
		"metabolites":      metabolome.Rows(),
		"genomic_features": genome.Rows(),
	}})

	a, err := analyzer.Run(r.Context(), metabolome, genome)
	if err != nil {
		s.events.Publish(Event{Type: EventAnalysisFailed, Data: map[string]interface{}{
			"code":  errors.GetCode(err),
			"error": err.Error(),
		}})
		s.writeError(w, err)
		return
	}

	if evicted, ok := s.store.Put(a); ok {
		s.logger.Info("evicted analysis", zap.String("analysis_id", evicted.String()))
	}
	s.events.Publish(Event{AnalysisID: a.ID.String(), Type: EventAnalysisFinished, Data: map[string]interface{}{
		"pairs":   a.Pairs(),
		"elapsed": a.Elapsed.String(),
	}})

	w.Header().Set("Location", "/api/analyses/"+a.ID.String())
	s.writeJSON(w, http.StatusCreated, analysisResponse(a))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*pipeline.Analysis, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.WithCode(errors.CodeNotFound, err))
		return nil, false
	}
	a, err := s.store.Get(id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return a, true
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, analysisResponse(a))
}

func (s *Server) handleFDR(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, fdrResponse(a))
}

// cutoffParam reads an optional score cutoff; absent means no cutoff on that
// side.
func cutoffParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, errors.InvalidInput(fmt.Sprintf("query parameter %s must be a number, got %q", name, raw))
	}
	return v, nil
}

// handleScores writes a long table as TSV. With negative and/or positive
// query parameters only valid records beyond those cutoffs are written.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	kind, err := core.ParseRunKind(chi.URLParam(r, "run"))
	if err != nil {
		s.writeError(w, errors.WithCode(errors.CodeNotFound, err))
		return
	}
	neg, err := cutoffParam(r, "negative")
	if err != nil {
		s.writeError(w, err)
		return
	}
	pos, err := cutoffParam(r, "positive")
	if err != nil {
		s.writeError(w, err)
		return
	}

	table := a.Table(kind)
	if !math.IsNaN(neg) || !math.IsNaN(pos) {
		table = table.Filter(neg, pos)
	}

	var buf bytes.Buffer
	if err := export.WriteLongTable(&buf, table); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/tab-separated-values")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_scores.tsv", kind))
	w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	name, ext, found := strings.Cut(chi.URLParam(r, "chart"), ".")
	if !found {
		s.writeError(w, errors.NotFound("chart "+name))
		return
	}
	format, err := chart.ParseFormat(ext)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	switch name {
	case "histogram":
		err = chart.RenderHistogram(&buf, a.FDR.Histogram, format)
	case "fdr":
		err = chart.RenderFDRCurve(&buf, a.FDR.Curve, format)
	default:
		err = errors.NotFound("chart " + name)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(buf.Bytes())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(report.Markdown(a)))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(report.HTML(a))
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, a); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=corromics_%s.xlsx", a.ID))
	w.Write(buf.Bytes())
}
