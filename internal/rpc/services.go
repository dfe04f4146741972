package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	AuthService    = "foodlog.v1.Auth"
	RecordsService = "foodlog.v1.Records"
	MediaService   = "foodlog.v1.Media"
)

// FullMethod returns the gRPC path of method on service.
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

type AuthServer interface {
	Register(ctx context.Context, req *Credentials) (*AuthResponse, error)
	Login(ctx context.Context, req *Credentials) (*AuthResponse, error)
}

type RecordsServer interface {
	Create(ctx context.Context, req *CreateRequest) (*Record, error)
	Update(ctx context.Context, req *UpdateRequest) (*Record, error)
	Delete(ctx context.Context, req *DeleteRequest) (*DeleteResponse, error)
	List(ctx context.Context, req *ListRequest) (*ListResponse, error)
	Ping(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
}

type MediaServer interface {
	PresignPhotoUpload(ctx context.Context, req *PresignRequest) (*PresignResponse, error)
	PresignPhotoDownload(ctx context.Context, req *PresignRequest) (*PresignResponse, error)
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthService,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(AuthService, "Register", AuthServer.Register)},
		{MethodName: "Login", Handler: unary(AuthService, "Login", AuthServer.Login)},
	},
	Metadata: "foodlog/v1/auth",
}

var RecordsServiceDesc = grpc.ServiceDesc{
	ServiceName: RecordsService,
	HandlerType: (*RecordsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Create", Handler: unary(RecordsService, "Create", RecordsServer.Create)},
		{MethodName: "Update", Handler: unary(RecordsService, "Update", RecordsServer.Update)},
		{MethodName: "Delete", Handler: unary(RecordsService, "Delete", RecordsServer.Delete)},
		{MethodName: "List", Handler: unary(RecordsService, "List", RecordsServer.List)},
		{MethodName: "Ping", Handler: pingHandler},
	},
	Metadata: "foodlog/v1/records",
}

var MediaServiceDesc = grpc.ServiceDesc{
	ServiceName: MediaService,
	HandlerType: (*MediaServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PresignPhotoUpload", Handler: unary(MediaService, "PresignPhotoUpload", MediaServer.PresignPhotoUpload)},
		{MethodName: "PresignPhotoDownload", Handler: unary(MediaService, "PresignPhotoDownload", MediaServer.PresignPhotoDownload)},
	},
	Metadata: "foodlog/v1/media",
}

// unary adapts a typed method of server interface S to a grpc.MethodHandler
// that decodes the Struct envelope, runs interceptors and encodes the reply.
func unary[S, Req, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := FullMethod(service, method)

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		handler := func(ctx context.Context, req any) (any, error) {
			msg := new(Req)
			if err := FromStruct(req.(*structpb.Struct), msg); err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			resp, err := call(srv.(S), ctx, msg)
			if err != nil {
				return nil, err
			}
			out, err := ToStruct(resp)
			if err != nil {
				return nil, status.Error(codes.Internal, err.Error())
			}
			return out, nil
		}

		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, handler)
	}
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecordsServer).Ping(ctx, req.(*emptypb.Empty))
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(RecordsService, "Ping")}
	return interceptor(ctx, in, info, handler)
}
