// internal/wire/wire.go

// Package wire defines the gRPC contract between the CLI and predictor-server.
//
// Messages are google.protobuf.Struct values so the contract needs no
// generated code. A request carries either a normalized frame or a raw
// camera frame that the server normalizes itself:
//
//	normalized: {"task": string, "size": number, "image": base64(RGB HWC), "log_metrics": bool}
//	raw:        {"task": string, "height": number, "width": number, "order": "bgr"|"rgb"|"bgra"|"rgba"|"gray",
//	             "frame": base64(HWC), "log_metrics": bool}
//	response:   {"success": bool}
package wire

import (
	"encoding/base64"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "successdetector.v1.OutcomePredictor"
	// PredictOutcomeMethod is the full method path of the only RPC.
	PredictOutcomeMethod = "/" + ServiceName + "/PredictOutcome"
)

// Request is the decoded form of a PredictOutcome request. Exactly one of
// Image and Frame is set.
type Request struct {
	Task       string
	Image      *imaging.NormalizedImage
	Frame      *imaging.RawImage
	LogMetrics bool
}

// EncodeRequest builds the Struct sent over the wire.
func EncodeRequest(req Request) (*structpb.Struct, error) {
	switch {
	case req.Image != nil && req.Frame != nil:
		return nil, fmt.Errorf("request has both a normalized image and a raw frame")
	case req.Image != nil:
		return structpb.NewStruct(map[string]interface{}{
			"task":        req.Task,
			"size":        req.Image.Size,
			"image":       base64.StdEncoding.EncodeToString(req.Image.Pix),
			"log_metrics": req.LogMetrics,
		})
	case req.Frame != nil:
		return structpb.NewStruct(map[string]interface{}{
			"task":        req.Task,
			"height":      req.Frame.Height,
			"width":       req.Frame.Width,
			"order":       req.Frame.Order.String(),
			"frame":       base64.StdEncoding.EncodeToString(req.Frame.Pix),
			"log_metrics": req.LogMetrics,
		})
	default:
		return nil, fmt.Errorf("request has no image")
	}
}

// DecodeRequest validates and decodes a request Struct.
func DecodeRequest(s *structpb.Struct) (Request, error) {
	if s == nil {
		return Request{}, fmt.Errorf("request cannot be nil")
	}
	fields := s.GetFields()

	task, ok := fields["task"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return Request{}, fmt.Errorf("field task must be a string")
	}
	req := Request{
		Task:       task.StringValue,
		LogMetrics: fields["log_metrics"].GetBoolValue(),
	}

	if _, raw := fields["order"]; raw {
		frame, err := decodeFrame(fields)
		if err != nil {
			return Request{}, err
		}
		req.Frame = frame
		return req, nil
	}

	size, err := positiveInt(fields, "size")
	if err != nil {
		return Request{}, err
	}
	pix, err := bytesField(fields, "image")
	if err != nil {
		return Request{}, err
	}
	img, err := imaging.NewNormalized(size, pix)
	if err != nil {
		return Request{}, err
	}
	req.Image = img
	return req, nil
}

func decodeFrame(fields map[string]*structpb.Value) (*imaging.RawImage, error) {
	name, ok := fields["order"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, fmt.Errorf("field order must be a string")
	}
	order, err := imaging.ParseChannelOrder(name.StringValue)
	if err != nil {
		return nil, err
	}
	height, err := positiveInt(fields, "height")
	if err != nil {
		return nil, err
	}
	width, err := positiveInt(fields, "width")
	if err != nil {
		return nil, err
	}
	pix, err := bytesField(fields, "frame")
	if err != nil {
		return nil, err
	}
	return imaging.FromFrame(pix, height, width, order)
}

func positiveInt(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %s must be a number", name)
	}
	n := v.NumberValue
	if n <= 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, fmt.Errorf("invalid %s: %v", name, n)
	}
	return int(n), nil
}

func bytesField(fields map[string]*structpb.Value, name string) ([]byte, error) {
	encoded, ok := fields[name].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, fmt.Errorf("field %s must be a base64 string", name)
	}
	b, err := base64.StdEncoding.DecodeString(encoded.StringValue)
	if err != nil {
		return nil, fmt.Errorf("field %s is not valid base64: %w", name, err)
	}
	return b, nil
}

// EncodeResponse builds the response Struct.
func EncodeResponse(success bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"success": structpb.NewBoolValue(success),
	}}
}

// DecodeResponse extracts the outcome from a response Struct.
func DecodeResponse(s *structpb.Struct) (bool, error) {
	v, ok := s.GetFields()["success"].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("response has no boolean success field")
	}
	return v.BoolValue, nil
}
