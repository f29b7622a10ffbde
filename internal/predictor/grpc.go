// internal/predictor/grpc.go
package predictor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
	"github.com/SyedDaiam9101/success-detector/internal/middleware"
	"github.com/SyedDaiam9101/success-detector/internal/wire"
)

// GRPCOptions configures the predictor-server client.
type GRPCOptions struct {
	Address string
	Timeout time.Duration
	Tracing bool
	// DialOptions are appended after the defaults.
	DialOptions []grpc.DialOption
}

// GRPC forwards predictions to a predictor-server.
type GRPC struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewGRPC creates a client for opts.Address. The connection is established lazily.
func NewGRPC(opts GRPCOptions) (*GRPC, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			middleware.UnaryClientRequestIDInterceptor(),
			middleware.UnaryClientMetricsInterceptor(),
		),
	}
	if opts.Tracing {
		dialOpts = append(dialOpts, grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	}
	dialOpts = append(dialOpts, opts.DialOptions...)

	conn, err := grpc.NewClient(opts.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client for %s: %w", opts.Address, err)
	}
	return &GRPC{conn: conn, timeout: opts.Timeout}, nil
}

// PredictOutcome calls PredictOutcome on the remote server.
func (g *GRPC) PredictOutcome(ctx context.Context, img *imaging.NormalizedImage, task string, logMetrics bool) (bool, error) {
	if err := checkImage("grpc", img); err != nil {
		return false, err
	}

	req, err := wire.EncodeRequest(wire.Request{Task: task, Image: img, LogMetrics: logMetrics})
	if err != nil {
		return false, predictionError("grpc", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := wire.Invoke(ctx, g.conn, req)
	if err != nil {
		return false, predictionError("grpc", fmt.Errorf("remote predict on %s failed: %w", g.conn.Target(), err))
	}

	success, err := wire.DecodeResponse(resp)
	if err != nil {
		return false, predictionError("grpc", err)
	}
	return success, nil
}

// Close closes the client connection.
func (g *GRPC) Close() error {
	return g.conn.Close()
}

var _ Predictor = (*GRPC)(nil)
