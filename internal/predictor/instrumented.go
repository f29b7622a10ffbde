// internal/predictor/instrumented.go
package predictor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
	"github.com/SyedDaiam9101/success-detector/internal/metrics"
)

const tracerName = "github.com/SyedDaiam9101/success-detector/internal/predictor"

// Instrumented traces every call and, when the caller asks for metric
// logging, records latency and outcome.
type Instrumented struct {
	next    Predictor
	backend string
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewInstrumented wraps next.
func NewInstrumented(next Predictor, backend string, logger *zap.Logger) *Instrumented {
	return &Instrumented{
		next:    next,
		backend: backend,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// PredictOutcome delegates to the wrapped predictor.
func (p *Instrumented) PredictOutcome(ctx context.Context, img *imaging.NormalizedImage, task string, logMetrics bool) (bool, error) {
	ctx, span := p.tracer.Start(ctx, "predictor.PredictOutcome", trace.WithAttributes(
		attribute.String("predictor.backend", p.backend),
		attribute.String("predictor.task", task),
	))
	defer span.End()

	start := time.Now()
	success, err := p.next.PredictOutcome(ctx, img, task, logMetrics)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prediction failed")
		p.logger.Error("prediction failed",
			zap.String("backend", p.backend),
			zap.Duration("latency", elapsed),
			zap.Error(err))
		return false, err
	}
	span.SetAttributes(attribute.Bool("predictor.success", success))

	if logMetrics {
		metrics.RecordPrediction(p.backend, success, elapsed.Seconds())
		p.logger.Info("prediction",
			zap.String("backend", p.backend),
			zap.String("task", task),
			zap.Bool("success", success),
			zap.Duration("latency", elapsed))
	}
	return success, nil
}

// Close closes the wrapped predictor.
func (p *Instrumented) Close() error {
	return p.next.Close()
}

var _ Predictor = (*Instrumented)(nil)
