// cmd/predictor-server/main.go
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/SyedDaiam9101/success-detector/internal/config"
	"github.com/SyedDaiam9101/success-detector/internal/handler"
	"github.com/SyedDaiam9101/success-detector/internal/imaging"
	"github.com/SyedDaiam9101/success-detector/internal/logging"
	"github.com/SyedDaiam9101/success-detector/internal/metrics"
	"github.com/SyedDaiam9101/success-detector/internal/middleware"
	"github.com/SyedDaiam9101/success-detector/internal/predictor"
	"github.com/SyedDaiam9101/success-detector/internal/tracing"
	"github.com/SyedDaiam9101/success-detector/internal/wire"
)

const serviceName = "predictor-server"

const (
	// defaultRecvMsgSize is grpc-go's own limit; the server never goes below it.
	defaultRecvMsgSize = 4 << 20
	// envelopeBytes covers the Struct field names and numbers around the pixels.
	envelopeBytes = 64 << 10
)

// drainDelay gives load balancers time to observe NOT_SERVING before the listener closes.
const drainDelay = 5 * time.Second

func main() {
	// Parse command-line flags
	flags := pflag.NewFlagSet(serviceName, pflag.ExitOnError)
	configFile := flags.String("config", config.DefaultPath, "Path to config file")
	port := flags.Int("port", 0, "gRPC server port (overrides server.port)")
	metricsPort := flags.Int("metrics_port", 0, "Prometheus metrics port (overrides server.metrics_port)")
	logLevel := flags.String("log_level", "", "Log level (overrides logging.level)")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort > 0 {
		cfg.Server.MetricsPort = *metricsPort
	}
	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}

	logger, err := logging.New(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting "+serviceName,
		zap.Int("port", cfg.Server.Port),
		zap.Int("metrics_port", cfg.Server.MetricsPort),
		zap.String("backend", cfg.Predictor.Backend),
		zap.Int("image_size", cfg.General.ShoulderCameraImageSize),
		zap.Bool("tracing", cfg.Tracing.Enabled))

	if err := serve(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server shutdown complete")
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	// Initialize OpenTelemetry tracer
	var tracerShutdown func(context.Context) error
	if cfg.Tracing.Enabled {
		var err error
		tracerShutdown, err = tracing.Init(serviceName, os.Stderr)
		if err != nil {
			logger.Warn("failed to initialize tracer", zap.Error(err))
		}
	}

	p, err := predictor.New(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	// Create gRPC health server
	healthServer := health.NewServer()

	// Start HTTP server for metrics and health checks
	httpServer := startHTTPServer(cfg.Server.MetricsPort, healthServer, logger)

	normalizer, err := imaging.NewNormalizer(cfg.General.ShoulderCameraImageSize,
		imaging.WithSizePolicy(cfg.SizePolicy()),
		imaging.WithInterpolation(cfg.Interpolation()),
		imaging.WithLogger(logger))
	if err != nil {
		return err
	}

	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(maxRecvMsgSize(cfg.General.ShoulderCameraImageSize)),
		grpc.ChainUnaryInterceptor(
			middleware.UnaryRequestIDInterceptor(),
			middleware.UnaryMetricsInterceptor(),
		),
	}
	if cfg.Tracing.Enabled {
		opts = append(opts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}
	grpcServer := grpc.NewServer(opts...)

	h := handler.New(p, normalizer, logger)
	wire.RegisterOutcomeServer(grpcServer, h)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	healthServer.SetServingStatus(wire.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	metrics.SetHealthy()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutting down gracefully", zap.String("signal", sig.String()))

		healthServer.SetServingStatus(wire.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		metrics.SetUnhealthy()

		time.Sleep(drainDelay)
		grpcServer.GracefulStop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn("http server shutdown", zap.Error(err))
		}
		if tracerShutdown != nil {
			if err := tracerShutdown(ctx); err != nil {
				logger.Warn("tracer shutdown", zap.Error(err))
			}
		}
	}()

	logger.Info("gRPC server listening", zap.String("addr", addr), zap.String("service", wire.ServiceName))
	return grpcServer.Serve(lis)
}

// maxRecvMsgSize fits a base64 raw frame of twice the target edge in four
// channels, which also covers any normalized image.
func maxRecvMsgSize(targetSize int) int {
	edge := 2 * targetSize
	n := base64.StdEncoding.EncodedLen(edge*edge*4) + envelopeBytes
	if n < defaultRecvMsgSize {
		return defaultRecvMsgSize
	}
	return n
}

func startHTTPServer(port int, healthServer *health.Server, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", healthHandler(healthServer, "OK", "Service Unavailable"))
	mux.HandleFunc("/readyz", healthHandler(healthServer, "Ready", "Not Ready"))

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening (metrics, health)", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return server
}

func healthHandler(healthServer *health.Server, ok, unavailable string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := healthServer.Check(r.Context(), &healthpb.HealthCheckRequest{})
		if err != nil || resp.Status != healthpb.HealthCheckResponse_SERVING {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(unavailable))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(ok))
	}
}
