// internal/predictor/http.go
package predictor

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
	"github.com/SyedDaiam9101/success-detector/internal/middleware"
)

// HTTPOptions configures the JSON-over-HTTP backend.
type HTTPOptions struct {
	Endpoint string
	Timeout  time.Duration
}

// HTTP posts frames to an inference endpoint that speaks:
//
//	POST {"task", "size", "image_png" (base64), "log_metrics"} -> {"success", "score"}
type HTTP struct {
	client   *resty.Client
	endpoint string
	logger   *zap.Logger
}

type httpPredictRequest struct {
	Task       string `json:"task"`
	Size       int    `json:"size"`
	ImagePNG   string `json:"image_png"`
	LogMetrics bool   `json:"log_metrics"`
}

type httpPredictResponse struct {
	Success *bool    `json:"success"`
	Score   *float64 `json:"score,omitempty"`
}

// NewHTTP creates a predictor for the given endpoint URL.
func NewHTTP(opts HTTPOptions, logger *zap.Logger) (*HTTP, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", opts.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", opts.Endpoint)
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	return &HTTP{client: client, endpoint: opts.Endpoint, logger: logger}, nil
}

// PredictOutcome posts the frame and returns the endpoint's verdict.
func (h *HTTP) PredictOutcome(ctx context.Context, img *imaging.NormalizedImage, task string, logMetrics bool) (bool, error) {
	if err := checkImage("http", img); err != nil {
		return false, err
	}

	data, err := img.EncodePNG()
	if err != nil {
		return false, predictionError("http", err)
	}

	var out httpPredictResponse
	req := h.client.R().
		SetContext(ctx).
		SetBody(httpPredictRequest{
			Task:       task,
			Size:       img.Size,
			ImagePNG:   base64.StdEncoding.EncodeToString(data),
			LogMetrics: logMetrics,
		}).
		SetResult(&out)
	if id := middleware.GetRequestID(ctx); id != "" {
		req.SetHeader("X-Request-ID", id)
	}

	res, err := req.Post(h.endpoint)
	if err != nil {
		return false, predictionError("http", fmt.Errorf("request to %s failed: %w", h.endpoint, err))
	}
	if res.IsError() {
		return false, predictionError("http", fmt.Errorf("%s returned %s: %s", h.endpoint, res.Status(), res.String()))
	}
	if out.Success == nil {
		return false, predictionError("http", fmt.Errorf("%s response has no success field", h.endpoint))
	}

	if out.Score != nil {
		h.logger.Debug("http verdict", zap.Bool("success", *out.Success), zap.Float64("score", *out.Score))
	}
	return *out.Success, nil
}

// Close is a no-op for the HTTP backend.
func (h *HTTP) Close() error {
	return nil
}

var _ Predictor = (*HTTP)(nil)
