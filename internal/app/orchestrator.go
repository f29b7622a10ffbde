// internal/app/orchestrator.go
package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/success-detector/internal/config"
	"github.com/SyedDaiam9101/success-detector/internal/imaging"
	"github.com/SyedDaiam9101/success-detector/internal/logging"
	"github.com/SyedDaiam9101/success-detector/internal/metrics"
	"github.com/SyedDaiam9101/success-detector/internal/middleware"
	"github.com/SyedDaiam9101/success-detector/internal/predictor"
	"github.com/SyedDaiam9101/success-detector/internal/tracing"
)

// ServiceName identifies the CLI in traces.
const ServiceName = "success-check"

const pushTimeout = 5 * time.Second

// Orchestrator wires the pipeline stages together. The function fields are
// the seams tests replace; NewOrchestrator fills them with the real ones.
type Orchestrator struct {
	LoadConfig    func(path string) (*config.Config, error)
	NewPredictor  func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (predictor.Predictor, error)
	NewNormalizer func(cfg *config.Config, logger *zap.Logger) (*imaging.Normalizer, error)

	Stdout io.Writer
	// TraceOutput receives spans when tracing.enabled is set; stderr when nil.
	TraceOutput io.Writer
	// Logger is used as is when set; otherwise one is built from the
	// configured level.
	Logger *zap.Logger
}

// NewOrchestrator returns an Orchestrator using the production components.
func NewOrchestrator(stdout io.Writer) *Orchestrator {
	return &Orchestrator{
		LoadConfig:    config.Load,
		NewPredictor:  predictor.New,
		NewNormalizer: DefaultNormalizer,
		Stdout:        stdout,
	}
}

// DefaultNormalizer builds a normalizer from general_params.
func DefaultNormalizer(cfg *config.Config, logger *zap.Logger) (*imaging.Normalizer, error) {
	return imaging.NewNormalizer(cfg.General.ShoulderCameraImageSize,
		imaging.WithSizePolicy(cfg.SizePolicy()),
		imaging.WithInterpolation(cfg.Interpolation()),
		imaging.WithLogger(logger))
}

// Run executes one prediction and writes the report to Stdout. Errors keep
// their concrete type behind a *logging.OperationError; nothing is printed
// when Run fails.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	runID := uuid.NewString()
	ctx = middleware.WithRequestID(ctx, runID)

	cfg, err := o.LoadConfig(req.ConfigPath)
	if err != nil {
		return nil, logging.NewOperationError("load_config", runID, err)
	}

	logger, err := o.logger(req, cfg)
	if err != nil {
		return nil, logging.NewOperationError("load_config", runID, err)
	}
	logger = logging.WithOperation(logger, "predict_outcome", runID)
	defer logger.Sync()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ServiceName, o.TraceOutput)
		if err != nil {
			logger.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					logger.Warn("failed to flush traces", zap.Error(err))
				}
			}()
		}
	}

	p, err := o.NewPredictor(ctx, cfg, logger)
	if err != nil {
		return nil, logging.NewOperationError("init_predictor", runID, err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("failed to close predictor", zap.Error(err))
		}
	}()

	normalizer, err := o.NewNormalizer(cfg, logger)
	if err != nil {
		return nil, logging.NewOperationError("normalize", runID, err)
	}
	img, err := normalizer.Normalize(ctx, req.ImagePath)
	if err != nil {
		return nil, logging.NewOperationError("normalize", runID, err)
	}

	success, err := p.PredictOutcome(ctx, img, req.Task, true)
	if err != nil {
		return nil, logging.NewOperationError("predict", runID, err)
	}

	report := &Report{
		RunID:     runID,
		Task:      req.Task,
		ImagePath: req.ImagePath,
		Backend:   cfg.Predictor.Backend,
		Success:   success,
	}
	if err := report.Render(o.stdout(), req.Format); err != nil {
		return nil, logging.NewOperationError("report", runID, err)
	}

	if cfg.Metrics.PushgatewayURL != "" {
		pctx, cancel := context.WithTimeout(ctx, pushTimeout)
		defer cancel()
		if err := metrics.Push(pctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, runID); err != nil {
			logger.Warn("metrics push failed", zap.Error(err))
		}
	}

	return report, nil
}

func (o *Orchestrator) logger(req Request, cfg *config.Config) (*zap.Logger, error) {
	if o.Logger != nil {
		return o.Logger, nil
	}
	level := cfg.Logging.Level
	if req.LogLevel != "" {
		level = req.LogLevel
	}
	return logging.New(level)
}

func (o *Orchestrator) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}
