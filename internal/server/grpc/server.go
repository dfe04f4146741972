// Package grpc exposes the foodlog services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/rpc"
	sm "github.com/dmitrijs2005/foodlog/internal/server/models"
	"github.com/dmitrijs2005/foodlog/internal/server/services"
	"google.golang.org/grpc"
)

type UserService interface {
	Register(ctx context.Context, userName, password string) (*services.Session, error)
	Login(ctx context.Context, userName, password string) (*services.Session, error)
	Authenticate(token string) (string, error)
}

type RecordService interface {
	Create(ctx context.Context, ownerID string, t models.EntityType, key string, payload []byte) (*sm.Record, error)
	Update(ctx context.Context, ownerID string, t models.EntityType, id string, payload []byte) (*sm.Record, error)
	Delete(ctx context.Context, ownerID string, t models.EntityType, id string) error
	List(ctx context.Context, ownerID string, t models.EntityType, f sm.RecordFilter) ([]*sm.Record, error)
}

type MediaService interface {
	PresignPhotoUpload(ctx context.Context, ownerID string) (string, string, error)
	PresignPhotoDownload(ctx context.Context, ownerID, key string) (string, error)
}

// GRPCServer implements the Auth, Records and Media services.
type GRPCServer struct {
	address string
	users   UserService
	records RecordService
	media   MediaService
	logger  logging.Logger
}

var (
	_ rpc.AuthServer    = (*GRPCServer)(nil)
	_ rpc.RecordsServer = (*GRPCServer)(nil)
	_ rpc.MediaServer   = (*GRPCServer)(nil)
)

func NewGRPCServer(a string, l logging.Logger, us UserService, rs RecordService, ms MediaService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		records: rs,
		media:   ms,
	}
}

// NewServer returns a gRPC server with every foodlog service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.accessTokenInterceptor)}, opts...)
	srv := grpc.NewServer(opts...)

	srv.RegisterService(&rpc.AuthServiceDesc, s)
	srv.RegisterService(&rpc.RecordsServiceDesc, s)
	srv.RegisterService(&rpc.MediaServiceDesc, s)
	return srv
}

// Run serves on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
