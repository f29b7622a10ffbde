// internal/predictor/factory.go
package predictor

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/success-detector/internal/cache"
	"github.com/SyedDaiam9101/success-detector/internal/config"
)

// New builds the configured backend, wrapped in the outcome cache when
// cache.redis_addr is set and always in instrumentation. Construction
// failures are *InitError.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Predictor, error) {
	p, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return nil, &InitError{Backend: cfg.Predictor.Backend, Err: err}
	}
	logger.Debug("predictor backend ready", zap.String("backend", cfg.Predictor.Backend))

	if cfg.Cache.RedisAddr != "" {
		c, err := cache.New(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			logger.Warn("outcome cache unavailable, continuing without it", zap.Error(err))
		} else {
			p = NewCached(p, c, cfg.Predictor.Backend, Fingerprint(cfg), cfg.Cache.TTL, logger)
		}
	}

	return NewInstrumented(p, cfg.Predictor.Backend, logger), nil
}

func newBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Predictor, error) {
	pc := cfg.Predictor
	switch pc.Backend {
	case "onnx":
		return NewONNX(ONNXOptions{
			ModelPath:     pc.ONNX.ModelPath,
			LibraryPath:   pc.ONNX.LibraryPath,
			ImageInput:    pc.ONNX.ImageInput,
			TaskInput:     pc.ONNX.TaskInput,
			Output:        pc.ONNX.Output,
			MaxTaskTokens: pc.ONNX.MaxTaskTokens,
			VocabSize:     pc.ONNX.VocabSize,
			Threshold:     pc.Threshold,
		})
	case "gemini":
		return NewGemini(ctx, GeminiOptions{
			Model:     pc.Gemini.Model,
			APIKey:    pc.Gemini.APIKey,
			Threshold: pc.Threshold,
		}, logger)
	case "http":
		return NewHTTP(HTTPOptions{Endpoint: pc.HTTP.Endpoint, Timeout: pc.HTTP.Timeout}, logger)
	case "grpc":
		return NewGRPC(GRPCOptions{
			Address: pc.GRPC.Address,
			Timeout: pc.GRPC.Timeout,
			Tracing: cfg.Tracing.Enabled,
		})
	case "mock":
		return NewMockWithOutcome(pc.MockOutcome), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", pc.Backend)
	}
}

// Fingerprint hashes the settings that can change a verdict for the same
// frame and task under the configured backend.
func Fingerprint(cfg *config.Config) string {
	pc := cfg.Predictor
	d := xxhash.New()
	fmt.Fprintf(d, "threshold=%g;", pc.Threshold)
	switch pc.Backend {
	case "onnx":
		fmt.Fprintf(d, "model=%s;inputs=%s,%s;output=%s;tokens=%d;vocab=%d",
			pc.ONNX.ModelPath, pc.ONNX.ImageInput, pc.ONNX.TaskInput, pc.ONNX.Output,
			pc.ONNX.MaxTaskTokens, pc.ONNX.VocabSize)
	case "gemini":
		fmt.Fprintf(d, "model=%s", pc.Gemini.Model)
	case "http":
		fmt.Fprintf(d, "endpoint=%s", pc.HTTP.Endpoint)
	case "grpc":
		fmt.Fprintf(d, "address=%s", pc.GRPC.Address)
	case "mock":
		fmt.Fprintf(d, "outcome=%t", pc.MockOutcome)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
