package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// invoke sends req as a Struct envelope and decodes the reply into resp.
func invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := ToStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return err
	}
	return FromStruct(out, resp)
}

type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func (c *AuthClient) Register(ctx context.Context, req *Credentials, opts ...grpc.CallOption) (*AuthResponse, error) {
	resp := new(AuthResponse)
	if err := invoke(ctx, c.cc, FullMethod(AuthService, "Register"), req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *AuthClient) Login(ctx context.Context, req *Credentials, opts ...grpc.CallOption) (*AuthResponse, error) {
	resp := new(AuthResponse)
	if err := invoke(ctx, c.cc, FullMethod(AuthService, "Login"), req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

type RecordsClient struct {
	cc grpc.ClientConnInterface
}

func NewRecordsClient(cc grpc.ClientConnInterface) *RecordsClient {
	return &RecordsClient{cc: cc}
}

func (c *RecordsClient) Create(ctx context.Context, req *CreateRequest, opts ...grpc.CallOption) (*Record, error) {
	resp := new(Record)
	if err := invoke(ctx, c.cc, FullMethod(RecordsService, "Create"), req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *RecordsClient) Update(ctx context.Context, req *UpdateRequest, opts ...grpc.CallOption) (*Record, error) {
	resp := new(Record)
	if err := invoke(ctx, c.cc, FullMethod(RecordsService, "Update"), req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *RecordsClient) Delete(ctx context.Context, req *DeleteRequest, opts ...grpc.CallOption) error {
	return invoke(ctx, c.cc, FullMethod(RecordsService, "Delete"), req, &DeleteResponse{}, opts...)
}

func (c *RecordsClient) List(ctx context.Context, req *ListRequest, opts ...grpc.CallOption) (*ListResponse, error) {
	resp := new(ListResponse)
	if err := invoke(ctx, c.cc, FullMethod(RecordsService, "List"), req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *RecordsClient) Ping(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, FullMethod(RecordsService, "Ping"), &emptypb.Empty{}, &emptypb.Empty{}, opts...)
}

type MediaClient struct {
	cc grpc.ClientConnInterface
}

func NewMediaClient(cc grpc.ClientConnInterface) *MediaClient {
	return &MediaClient{cc: cc}
}

func (c *MediaClient) PresignPhotoUpload(ctx context.Context, opts ...grpc.CallOption) (*PresignResponse, error) {
	resp := new(PresignResponse)
	if err := invoke(ctx, c.cc, FullMethod(MediaService, "PresignPhotoUpload"), &PresignRequest{}, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *MediaClient) PresignPhotoDownload(ctx context.Context, key string, opts ...grpc.CallOption) (*PresignResponse, error) {
	resp := new(PresignResponse)
	if err := invoke(ctx, c.cc, FullMethod(MediaService, "PresignPhotoDownload"), &PresignRequest{Key: key}, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}
