// internal/handler/handler.go
package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
	"github.com/SyedDaiam9101/success-detector/internal/middleware"
	"github.com/SyedDaiam9101/success-detector/internal/predictor"
	"github.com/SyedDaiam9101/success-detector/internal/wire"
)

// Handler implements wire.OutcomeServer on top of a local Predictor.
type Handler struct {
	predictor  predictor.Predictor
	normalizer *imaging.Normalizer
	logger     *zap.Logger
}

// New creates a new Handler. When normalizer is set, normalized images must
// match its target size and raw frames are normalized with it; without one,
// raw frames are rejected.
func New(p predictor.Predictor, normalizer *imaging.Normalizer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		predictor:  p,
		normalizer: normalizer,
		logger:     logger,
	}
}

// PredictOutcome validates the frame and runs it through the predictor.
func (h *Handler) PredictOutcome(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start := time.Now()

	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}

	if h.predictor == nil {
		return nil, failedPreconditionError("predictor not initialized")
	}

	decoded, err := wire.DecodeRequest(req)
	if err != nil {
		return nil, invalidArgumentError("invalid request: %v", err)
	}

	img, err := h.image(ctx, decoded, requestID)
	if err != nil {
		return nil, err
	}

	success, err := h.predictor.PredictOutcome(ctx, img, decoded.Task, decoded.LogMetrics)
	if err != nil {
		h.logger.Error("prediction error", zap.String("request_id", requestID), zap.Error(err))
		return nil, grpcError(err)
	}

	shape := img.Shape()
	h.logger.Info("PredictOutcome",
		zap.String("request_id", requestID),
		zap.Ints("shape", shape[:]),
		zap.Bool("raw_frame", decoded.Frame != nil),
		zap.Bool("success", success),
		zap.Duration("latency", time.Since(start)))

	return wire.EncodeResponse(success), nil
}

func (h *Handler) image(ctx context.Context, req wire.Request, requestID string) (*imaging.NormalizedImage, error) {
	if req.Frame != nil {
		if h.normalizer == nil {
			return nil, failedPreconditionError("raw frames are not accepted: no normalizer configured")
		}
		img, err := h.normalizer.NormalizeRaw(ctx, req.Frame, "request "+requestID)
		if err != nil {
			return nil, invalidArgumentError("invalid frame: %v", err)
		}
		return img, nil
	}

	if h.normalizer != nil && req.Image.Size != h.normalizer.TargetSize() {
		target := h.normalizer.TargetSize()
		return nil, invalidArgumentError(
			"image has mismatched dimensions: got %dx%d, expected %dx%d",
			req.Image.Size, req.Image.Size, target, target)
	}
	return req.Image, nil
}

var _ wire.OutcomeServer = (*Handler)(nil)
