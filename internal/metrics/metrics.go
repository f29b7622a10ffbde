// internal/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// GRPCServerHandlingSeconds is a histogram for gRPC server request latencies
	GRPCServerHandlingSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpc_server_handling_seconds",
			Help:    "Histogram of response latency (seconds) of gRPC that had been application-level handled by the server.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "code"},
	)

	// GRPCClientHandlingSeconds is a histogram for remote predictor call latencies
	GRPCClientHandlingSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpc_client_handling_seconds",
			Help:    "Histogram of latency (seconds) of gRPC calls issued to a remote predictor.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "code"},
	)

	// NormalizeLatencySeconds tracks decode + canonicalize + resize time
	NormalizeLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "normalize_duration_seconds",
			Help:    "Histogram of image normalization latency (seconds).",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// ImageResizedTotal counts frames that needed resampling
	ImageResizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_resized_total",
			Help: "Number of frames resampled to the target size.",
		},
		[]string{"interpolation"},
	)

	// PredictionLatencySeconds is a histogram for predictor latency per backend
	PredictionLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "Histogram of success prediction latency (seconds).",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"backend"},
	)

	// PredictionOutcomesTotal counts predicted outcomes per backend
	PredictionOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_outcomes_total",
			Help: "Number of success predictions by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	// CacheLookupsTotal counts outcome cache lookups by result
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outcome_cache_lookups_total",
			Help: "Number of outcome cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	// HealthStatus is a gauge indicating the health status of the predictor server
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "health_status",
			Help: "Health status of the service (1 = healthy, 0 = unhealthy).",
		},
	)
)

// RecordGRPCLatency records the latency of a served gRPC method call
func RecordGRPCLatency(method, code string, seconds float64) {
	GRPCServerHandlingSeconds.WithLabelValues(method, code).Observe(seconds)
}

// RecordGRPCClientLatency records the latency of an outgoing gRPC call
func RecordGRPCClientLatency(method, code string, seconds float64) {
	GRPCClientHandlingSeconds.WithLabelValues(method, code).Observe(seconds)
}

// RecordNormalize records the latency of one normalization
func RecordNormalize(seconds float64) {
	NormalizeLatencySeconds.Observe(seconds)
}

// RecordResize counts a resampled frame
func RecordResize(interpolation string) {
	ImageResizedTotal.WithLabelValues(interpolation).Inc()
}

// RecordPrediction records latency and outcome of one prediction
func RecordPrediction(backend string, success bool, seconds float64) {
	PredictionLatencySeconds.WithLabelValues(backend).Observe(seconds)
	PredictionOutcomesTotal.WithLabelValues(backend, OutcomeLabel(success)).Inc()
}

// RecordCacheLookup counts a cache lookup; result is hit, miss or error
func RecordCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

// OutcomeLabel maps a prediction to its label value.
func OutcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// SetHealthy sets the health status to healthy
func SetHealthy() {
	HealthStatus.Set(1)
}

// SetUnhealthy sets the health status to unhealthy
func SetUnhealthy() {
	HealthStatus.Set(0)
}

// Push sends the default registry to a Pushgateway, grouped by run id.
// The CLI exits right after a prediction, so scraping is not an option.
func Push(ctx context.Context, url, job, runID string) error {
	pusher := push.New(url, job).Gatherer(prometheus.DefaultGatherer)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
