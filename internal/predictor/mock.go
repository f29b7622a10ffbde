// internal/predictor/mock.go
package predictor

import (
	"context"
	"errors"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
)

// MockPredictor is a mock implementation of Predictor for testing and dry runs.
// It returns a fixed outcome without loading any model.
type MockPredictor struct {
	// Outcome is returned by every successful call
	Outcome bool
	// ShouldError if true, PredictOutcome will return an error
	ShouldError bool
	// ErrorMessage is the error message to return when ShouldError is true
	ErrorMessage string
	// CallCount tracks the number of times PredictOutcome was called
	CallCount int
	// LastImage, LastTask and LastLogMetrics record the most recent call
	LastImage      *imaging.NormalizedImage
	LastTask       string
	LastLogMetrics bool
	// Closed is set by Close
	Closed bool
}

// NewMock creates a MockPredictor that reports success
func NewMock() *MockPredictor {
	return &MockPredictor{Outcome: true}
}

// NewMockWithOutcome creates a MockPredictor with a fixed outcome
func NewMockWithOutcome(outcome bool) *MockPredictor {
	return &MockPredictor{Outcome: outcome}
}

// PredictOutcome validates the image and returns Outcome.
func (m *MockPredictor) PredictOutcome(ctx context.Context, img *imaging.NormalizedImage, task string, logMetrics bool) (bool, error) {
	m.CallCount++
	m.LastImage = img
	m.LastTask = task
	m.LastLogMetrics = logMetrics

	if m.ShouldError {
		msg := m.ErrorMessage
		if msg == "" {
			msg = "mock prediction error"
		}
		return false, &PredictionError{Backend: "mock", Err: errors.New(msg)}
	}
	if err := checkImage("mock", img); err != nil {
		return false, err
	}
	return m.Outcome, nil
}

// Close marks the mock closed
func (m *MockPredictor) Close() error {
	m.Closed = true
	return nil
}

// SetError configures the mock to return an error on the next PredictOutcome call
func (m *MockPredictor) SetError(msg string) {
	m.ShouldError = true
	m.ErrorMessage = msg
}

// Ensure MockPredictor implements Predictor at compile time
var _ Predictor = (*MockPredictor)(nil)
