package export

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// forwardingStateServer is the method set RegisterService type-checks the
// concrete service against.
type forwardingStateServer interface {
	GetForwardingState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetBandwidthState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetPath(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Register attaches the export service to a gRPC server.
func Register(s grpc.ServiceRegistrar, svc *Service) {
	s.RegisterService(&serviceDesc, svc)
}

// serviceDesc is maintained by hand because the wire schema is built
// entirely from well-known types; there is no .proto file to generate
// from.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*forwardingStateServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetForwardingState",
			Handler:    getForwardingStateHandler,
		},
		{
			MethodName: "GetBandwidthState",
			Handler:    getBandwidthStateHandler,
		},
		{
			MethodName: "GetPath",
			Handler:    getPathHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func getForwardingStateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(forwardingStateServer).GetForwardingState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/GetForwardingState",
	}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(forwardingStateServer).GetForwardingState(ctx, req.(*emptypb.Empty))
	})
}

func getBandwidthStateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(forwardingStateServer).GetBandwidthState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/GetBandwidthState",
	}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(forwardingStateServer).GetBandwidthState(ctx, req.(*emptypb.Empty))
	})
}

func getPathHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(forwardingStateServer).GetPath(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/GetPath",
	}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(forwardingStateServer).GetPath(ctx, req.(*structpb.Struct))
	})
}
