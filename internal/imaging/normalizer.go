// internal/imaging/normalizer.go
package imaging

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/success-detector/internal/metrics"
)

const tracerName = "github.com/SyedDaiam9101/success-detector/internal/imaging"

// SizePolicy decides what happens when a frame's edge lengths are compared to the target.
type SizePolicy string

const (
	// PolicyResize accepts matching frames untouched and resamples the rest.
	PolicyResize SizePolicy = "resize"
	// PolicyExact accepts matching frames and rejects the rest.
	PolicyExact SizePolicy = "exact"
	// PolicyLegacy rejects frames that already match and resamples the rest.
	// It matches the old capture scripts and is opt-in only.
	PolicyLegacy SizePolicy = "legacy"
)

// ParseSizePolicy validates a policy name; empty means PolicyResize.
func ParseSizePolicy(s string) (SizePolicy, error) {
	switch p := SizePolicy(s); p {
	case "":
		return PolicyResize, nil
	case PolicyResize, PolicyExact, PolicyLegacy:
		return p, nil
	default:
		return "", fmt.Errorf("unknown size policy %q", s)
	}
}

// Normalizer produces NormalizedImages of a fixed edge length.
type Normalizer struct {
	target int
	policy SizePolicy
	interp Interpolation
	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSizePolicy overrides the default PolicyResize.
func WithSizePolicy(p SizePolicy) Option {
	return func(n *Normalizer) { n.policy = p }
}

// WithInterpolation overrides the default bilinear kernel.
func WithInterpolation(i Interpolation) Option {
	return func(n *Normalizer) { n.interp = i }
}

// WithLogger attaches a logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

// NewNormalizer creates a Normalizer for targetSize x targetSize output.
func NewNormalizer(targetSize int, opts ...Option) (*Normalizer, error) {
	if targetSize <= 0 {
		return nil, fmt.Errorf("target size must be positive, got %d", targetSize)
	}
	n := &Normalizer{
		target: targetSize,
		policy: PolicyResize,
		interp: InterpBilinear,
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// TargetSize returns the configured edge length.
func (n *Normalizer) TargetSize() int { return n.target }

// Normalize decodes the file at path and returns it as a normalized frame.
// Errors are *DecodeError or *ShapeError; no image is returned with an error.
func (n *Normalizer) Normalize(ctx context.Context, path string) (*NormalizedImage, error) {
	ctx, span := n.tracer.Start(ctx, "imaging.Normalize", trace.WithAttributes(
		attribute.String("image.path", path),
		attribute.Int("image.target_size", n.target),
	))
	defer span.End()

	start := time.Now()
	raw, format, err := decodeFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}
	n.logger.Debug("image decoded",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", raw.Width),
		zap.Int("height", raw.Height))

	img, err := n.normalize(ctx, raw, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "normalize failed")
		return nil, err
	}
	metrics.RecordNormalize(time.Since(start).Seconds())
	return img, nil
}

// NormalizeRaw runs an already decoded frame through canonicalization and the
// size policy. source names the frame in errors and logs.
func (n *Normalizer) NormalizeRaw(ctx context.Context, raw *RawImage, source string) (*NormalizedImage, error) {
	_, span := n.tracer.Start(ctx, "imaging.NormalizeRaw", trace.WithAttributes(
		attribute.String("image.source", source),
		attribute.Int("image.target_size", n.target),
	))
	defer span.End()

	start := time.Now()
	img, err := n.normalize(ctx, raw, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "normalize failed")
		return nil, err
	}
	metrics.RecordNormalize(time.Since(start).Seconds())
	return img, nil
}

func (n *Normalizer) normalize(_ context.Context, raw *RawImage, source string) (*NormalizedImage, error) {
	if raw == nil {
		return nil, &ShapeError{Source: source, Target: n.target, Policy: n.policy, Reason: "no frame"}
	}
	if err := raw.validate(len(raw.Pix)); err != nil {
		return nil, &ShapeError{
			Source: source, Height: raw.Height, Width: raw.Width,
			Target: n.target, Policy: n.policy, Reason: err.Error(),
		}
	}

	rgb := Canonicalize(raw)
	matches := rgb.Height == n.target && rgb.Width == n.target

	switch {
	case matches && n.policy == PolicyLegacy:
		return nil, n.shapeError(rgb, source, "already at target size")
	case !matches && n.policy == PolicyExact:
		return nil, n.shapeError(rgb, source, "does not match target size")
	case !matches:
		n.logger.Debug("resizing frame",
			zap.String("source", source),
			zap.Int("from_width", rgb.Width),
			zap.Int("from_height", rgb.Height),
			zap.Int("to", n.target),
			zap.String("interpolation", string(n.interp)))
		rgb = Resize(rgb, n.target, n.interp)
		metrics.RecordResize(string(n.interp))
	}

	return &NormalizedImage{Size: n.target, Pix: rgb.Pix}, nil
}

func (n *Normalizer) shapeError(rgb *RawImage, source, reason string) error {
	return &ShapeError{
		Source: source,
		Height: rgb.Height,
		Width:  rgb.Width,
		Target: n.target,
		Policy: n.policy,
		Reason: reason,
	}
}
