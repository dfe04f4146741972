package grpc

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/rpc"
	sm "github.com/dmitrijs2005/foodlog/internal/server/models"
	"github.com/dmitrijs2005/foodlog/internal/server/services"
	"google.golang.org/protobuf/types/known/emptypb"
)

func (s *GRPCServer) Register(ctx context.Context, req *rpc.Credentials) (*rpc.AuthResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	session, err := s.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username, "user_id", session.UserID)
	return authResponse(session), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.Credentials) (*rpc.AuthResponse, error) {

	session, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}

	return authResponse(session), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Create(ctx context.Context, req *rpc.CreateRequest) (*rpc.Record, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.Create(ctx, owner, models.EntityType(req.EntityType), req.IdempotencyKey, req.Payload)
	if err != nil {
		return nil, s.toStatus(ctx, "create "+req.EntityType, err)
	}

	s.logger.Debug(ctx, "record created", "type", req.EntityType, "id", rec.ID, "key", req.IdempotencyKey)
	return toRPC(rec), nil
}

func (s *GRPCServer) Update(ctx context.Context, req *rpc.UpdateRequest) (*rpc.Record, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.Update(ctx, owner, models.EntityType(req.EntityType), req.ID, req.Payload)
	if err != nil {
		return nil, s.toStatus(ctx, "update "+req.EntityType, err)
	}
	return toRPC(rec), nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *rpc.DeleteRequest) (*rpc.DeleteResponse, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.records.Delete(ctx, owner, models.EntityType(req.EntityType), req.ID); err != nil {
		return nil, s.toStatus(ctx, "delete "+req.EntityType, err)
	}
	return &rpc.DeleteResponse{}, nil
}

func (s *GRPCServer) List(ctx context.Context, req *rpc.ListRequest) (*rpc.ListResponse, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.records.List(ctx, owner, models.EntityType(req.EntityType), sm.RecordFilter{
		From:         req.From,
		To:           req.To,
		UpdatedSince: req.UpdatedSince,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "list "+req.EntityType, err)
	}

	resp := &rpc.ListResponse{Records: make([]rpc.Record, 0, len(recs))}
	for _, rec := range recs {
		resp.Records = append(resp.Records, *toRPC(rec))
	}
	return resp, nil
}

func (s *GRPCServer) PresignPhotoUpload(ctx context.Context, _ *rpc.PresignRequest) (*rpc.PresignResponse, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	key, url, err := s.media.PresignPhotoUpload(ctx, owner)
	if err != nil {
		return nil, s.toStatus(ctx, "presign upload", err)
	}
	return &rpc.PresignResponse{Key: key, URL: url}, nil
}

func (s *GRPCServer) PresignPhotoDownload(ctx context.Context, req *rpc.PresignRequest) (*rpc.PresignResponse, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.media.PresignPhotoDownload(ctx, owner, req.Key)
	if err != nil {
		return nil, s.toStatus(ctx, "presign download", err)
	}
	return &rpc.PresignResponse{Key: req.Key, URL: url}, nil
}

func authResponse(s *services.Session) *rpc.AuthResponse {
	return &rpc.AuthResponse{UserID: s.UserID, Username: s.UserName, AccessToken: s.AccessToken}
}

func toRPC(rec *sm.Record) *rpc.Record {
	return &rpc.Record{
		ID:             rec.ID,
		EntityType:     string(rec.EntityType),
		IdempotencyKey: rec.IdempotencyKey,
		Payload:        rec.Payload,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}
