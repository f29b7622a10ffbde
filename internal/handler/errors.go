// internal/handler/errors.go
package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SyedDaiam9101/success-detector/internal/predictor"
)

// grpcError maps predictor errors to appropriate gRPC status errors
func grpcError(err error) error {
	if err == nil {
		return nil
	}

	var initErr *predictor.InitError
	var predErr *predictor.PredictionError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "prediction timed out: %v", err)

	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "prediction canceled: %v", err)

	case errors.As(err, &initErr):
		return status.Errorf(codes.FailedPrecondition, "predictor not ready: %v", err)

	case errors.As(err, &predErr):
		return status.Errorf(codes.Internal, "inference execution failed: %v", err)

	case isStatus(err):
		return err

	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}

// invalidArgumentError creates an InvalidArgument gRPC error
func invalidArgumentError(format string, args ...interface{}) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// failedPreconditionError creates a FailedPrecondition gRPC error
func failedPreconditionError(format string, args ...interface{}) error {
	return status.Errorf(codes.FailedPrecondition, format, args...)
}

func isStatus(err error) bool {
	_, ok := status.FromError(err)
	return ok
}
