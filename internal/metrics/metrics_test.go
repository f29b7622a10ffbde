// internal/metrics/metrics_test.go
package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPrediction(t *testing.T) {
	before := testutil.ToFloat64(PredictionOutcomesTotal.WithLabelValues("metrics-test", "success"))
	RecordPrediction("metrics-test", true, 0.02)
	after := testutil.ToFloat64(PredictionOutcomesTotal.WithLabelValues("metrics-test", "success"))
	assert.Equal(t, before+1, after)
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "success", OutcomeLabel(true))
	assert.Equal(t, "failure", OutcomeLabel(false))
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	RecordCacheLookup("miss")
	require.NoError(t, Push(context.Background(), ts.URL, "success-check", "run-1"))
	assert.Equal(t, "/metrics/job/success-check/run_id/run-1", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestPush_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	err := Push(context.Background(), ts.URL, "success-check", "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), ts.URL))
}
