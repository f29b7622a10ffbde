// internal/wire/service.go
package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// OutcomeServer is implemented by the predictor-server handler.
type OutcomeServer interface {
	PredictOutcome(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the OutcomePredictor service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OutcomeServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PredictOutcome",
			Handler:    predictOutcomeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "successdetector/v1/outcome.proto",
}

// RegisterOutcomeServer registers srv on s.
func RegisterOutcomeServer(s grpc.ServiceRegistrar, srv OutcomeServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Invoke calls PredictOutcome on cc.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, PredictOutcomeMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func predictOutcomeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OutcomeServer).PredictOutcome(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PredictOutcomeMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OutcomeServer).PredictOutcome(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
