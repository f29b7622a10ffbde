// internal/predictor/instrumented_test.go
package predictor

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/SyedDaiam9101/success-detector/internal/metrics"
)

func TestInstrumented_LogsMetricsWhenAsked(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	backend := "instrumented-test"
	p := NewInstrumented(NewMockWithOutcome(true), backend, zap.New(core))

	counter := metrics.PredictionOutcomesTotal.WithLabelValues(backend, "success")
	before := testutil.ToFloat64(counter)

	success, err := p.PredictOutcome(context.Background(), testImage(t, 2), "fold the towel", true)
	require.NoError(t, err)
	assert.True(t, success)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, 1, logs.FilterMessage("prediction").Len())

	_, err = p.PredictOutcome(context.Background(), testImage(t, 2), "fold the towel", false)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, 1, logs.FilterMessage("prediction").Len())
}

func TestInstrumented_PropagatesErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mock := NewMock()
	mock.SetError("model execution failed")
	p := NewInstrumented(mock, "mock", zap.New(core))

	_, err := p.PredictOutcome(context.Background(), testImage(t, 2), "t", true)
	var predErr *PredictionError
	require.ErrorAs(t, err, &predErr)
	assert.Equal(t, 1, logs.FilterMessage("prediction failed").Len())

	require.NoError(t, p.Close())
	assert.True(t, mock.Closed)
}
