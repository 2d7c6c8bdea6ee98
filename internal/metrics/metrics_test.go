package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corromics/domain/core"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	r.ObserveRun(core.RunTarget, 6, 3)
	r.ObserveRun(core.RunDecoy, 6, 0)
	r.ObserveDropped(2)
	r.ObserveStage("correlate", 25*time.Millisecond)
	r.AnalysisFinished(nil)
	r.AnalysisFinished(core.NewAlignmentError(2, 3))

	assert.Equal(t, 6.0, testutil.ToFloat64(r.pairs.WithLabelValues("target")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.invalid.WithLabelValues("target")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.invalid.WithLabelValues("decoy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.dropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.analyses.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.analyses.WithLabelValues("ALIGNMENT_ERROR")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "corromics_stage_duration_seconds_bucket")
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRun(core.RunTarget, 1, 0)
		r.ObserveStage("combine", time.Second)
		r.ObserveDropped(1)
		r.AnalysisFinished(nil)
	})
}
