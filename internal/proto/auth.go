// Package proto describes the ccxpauth.v1.AuthService gRPC contract. The
// messages are google.protobuf.Struct values with the field names below,
// which keeps the service usable from grpcurl without a schema file.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName              = "ccxpauth.v1.AuthService"
	SignInFullMethod         = "/" + ServiceName + "/SignIn"
	RefreshSessionFullMethod = "/" + ServiceName + "/RefreshSession"
)

// AuthServiceServer is implemented by the server transport.
type AuthServiceServer interface {
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

func unaryHandler(fullMethod string, call func(AuthServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SignIn",
			Handler:    unaryHandler(SignInFullMethod, AuthServiceServer.SignIn),
		},
		{
			MethodName: "RefreshSession",
			Handler:    unaryHandler(RefreshSessionFullMethod, AuthServiceServer.RefreshSession),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ccxpauth/v1/auth.proto",
}

// AuthServiceClient calls the service over cc.
type AuthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

func (c *AuthServiceClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SignInFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) RefreshSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RefreshSessionFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
