package remote

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

type fakeRecords struct {
	rpc.RecordsServer
	gotToken  string
	gotCreate *rpc.CreateRequest
	gotList   *rpc.ListRequest
	deleteErr error
}

func tokenFrom(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *fakeRecords) Create(ctx context.Context, req *rpc.CreateRequest) (*rpc.Record, error) {
	f.gotToken = tokenFrom(ctx)
	f.gotCreate = req
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	return &rpc.Record{ID: "srv_1", EntityType: req.EntityType, Payload: req.Payload, CreatedAt: now, UpdatedAt: now}, nil
}

func (f *fakeRecords) Update(_ context.Context, req *rpc.UpdateRequest) (*rpc.Record, error) {
	return nil, status.Error(codes.InvalidArgument, "servings must be positive")
}

func (f *fakeRecords) Delete(_ context.Context, req *rpc.DeleteRequest) (*rpc.DeleteResponse, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &rpc.DeleteResponse{}, nil
}

func (f *fakeRecords) List(_ context.Context, req *rpc.ListRequest) (*rpc.ListResponse, error) {
	f.gotList = req
	return &rpc.ListResponse{Records: []rpc.Record{
		{ID: "a", EntityType: req.EntityType, Payload: []byte(`{ "day": "2026-10-14" }`)},
	}}, nil
}

func (f *fakeRecords) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	f.gotToken = tokenFrom(ctx)
	return &emptypb.Empty{}, nil
}

type fakeAuth struct {
	rpc.AuthServer
}

func (fakeAuth) Login(_ context.Context, req *rpc.Credentials) (*rpc.AuthResponse, error) {
	if req.Password != "secret" {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	return &rpc.AuthResponse{UserID: "u1", Username: req.Username, AccessToken: "tok"}, nil
}

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, recs *fakeRecords, tokens TokenSource) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	s := grpc.NewServer()
	s.RegisterService(&rpc.RecordsServiceDesc, recs)
	s.RegisterService(&rpc.AuthServiceDesc, fakeAuth{})
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet", tokens,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGRPCClient_CreateAttachesTokenAndKey(t *testing.T) {
	recs := &fakeRecords{}
	c := newTestClient(t, recs, staticToken("abc"))

	rec, err := c.Create(context.Background(), models.TypeFood, "tmp_1", []byte(`{"name":"Oats"}`))
	require.NoError(t, err)

	assert.Equal(t, "abc", recs.gotToken)
	assert.Equal(t, "tmp_1", recs.gotCreate.IdempotencyKey)
	assert.Equal(t, "food", recs.gotCreate.EntityType)
	assert.Equal(t, "srv_1", rec.ID)
	assert.Equal(t, models.TypeFood, rec.EntityType)
	assert.JSONEq(t, `{"name":"Oats"}`, string(rec.Payload))
}

func TestGRPCClient_NoTokenSendsNoHeader(t *testing.T) {
	recs := &fakeRecords{}
	c := newTestClient(t, recs, staticToken(""))

	require.NoError(t, c.Ping(context.Background()))
	assert.Empty(t, recs.gotToken)
}

func TestGRPCClient_ListCompactsPayload(t *testing.T) {
	recs := &fakeRecords{}
	c := newTestClient(t, recs, nil)

	out, err := c.List(context.Background(), models.TypeDiaryEntry, ListFilter{From: "2026-10-01", To: "2026-10-31"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, `{"day":"2026-10-14"}`, string(out[0].Payload))
	assert.Equal(t, "2026-10-01", recs.gotList.From)
	assert.Equal(t, "2026-10-31", recs.gotList.To)
}

func TestGRPCClient_ErrorsAreClassified(t *testing.T) {
	recs := &fakeRecords{deleteErr: status.Error(codes.NotFound, "gone")}
	c := newTestClient(t, recs, nil)
	ctx := context.Background()

	_, err := c.Update(ctx, models.TypeDiaryEntry, "x", []byte(`{}`))
	require.Error(t, err)
	assert.True(t, IsRejected(err))

	err = c.Delete(ctx, models.TypeDiaryEntry, "x")
	assert.True(t, IsRejected(err))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Login(ctx, "ann", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrTransient)

	acc, err := c.Login(ctx, "ann", "secret")
	require.NoError(t, err)
	assert.Equal(t, &Account{UserID: "u1", Username: "ann", AccessToken: "tok"}, acc)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name      string
		in        error
		transient bool
		target    error
	}{
		{"unavailable", status.Error(codes.Unavailable, "down"), true, ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), true, ErrUnavailable},
		{"unauthenticated", status.Error(codes.Unauthenticated, "expired"), true, ErrUnauthorized},
		{"not found", status.Error(codes.NotFound, "gone"), false, ErrNotFound},
		{"already exists", status.Error(codes.AlreadyExists, "dup barcode"), false, ErrConflict},
		{"invalid", status.Error(codes.InvalidArgument, "bad"), false, ErrRejected},
		{"permission", status.Error(codes.PermissionDenied, "not yours"), false, ErrRejected},
		{"internal", status.Error(codes.Internal, "boom"), true, ErrTransient},
		{"ctx canceled", context.Canceled, true, context.Canceled},
		{"plain", errors.New("dial failed"), true, ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.in)
			assert.ErrorIs(t, got, tt.target)
			assert.Equal(t, tt.transient, errors.Is(got, ErrTransient))
			assert.Equal(t, !tt.transient, IsRejected(got))
		})
	}

	assert.NoError(t, mapError(nil))
}
