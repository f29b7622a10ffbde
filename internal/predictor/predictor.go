// internal/predictor/predictor.go

// Package predictor decides task success from a normalized camera frame.
package predictor

import (
	"context"
	"errors"
	"fmt"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
)

// Predictor is the task-success inference capability. Backends may be local
// (onnx), remote (grpc, http) or hosted models (gemini).
type Predictor interface {
	// PredictOutcome reports whether task was accomplished in img.
	// With logMetrics set the call is recorded as a prediction metric.
	PredictOutcome(ctx context.Context, img *imaging.NormalizedImage, task string, logMetrics bool) (bool, error)

	// Close releases any resources held by the backend.
	Close() error
}

// InitError reports a backend that could not be constructed from config.
type InitError struct {
	Backend string
	Err     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize %s predictor: %v", e.Backend, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// PredictionError reports a failure inside a backend's inference call.
type PredictionError struct {
	Backend string
	Err     error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("%s prediction failed: %v", e.Backend, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

func predictionError(backend string, err error) error {
	var pe *PredictionError
	if errors.As(err, &pe) {
		return err
	}
	return &PredictionError{Backend: backend, Err: err}
}

func checkImage(backend string, img *imaging.NormalizedImage) error {
	if img == nil {
		return &PredictionError{Backend: backend, Err: errors.New("no image")}
	}
	if len(img.Pix) != img.Size*img.Size*3 || img.Size <= 0 {
		return &PredictionError{Backend: backend, Err: fmt.Errorf("image has wrong size: got %d bytes for edge %d", len(img.Pix), img.Size)}
	}
	return nil
}
