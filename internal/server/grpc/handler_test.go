package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func ownerCtx(owner string) context.Context {
	return context.WithValue(context.Background(), userIDKey, owner)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w: food x", common.ErrParentNotFound), codes.FailedPrecondition},
		{fmt.Errorf("%w: name", common.ErrInvalidInput), codes.InvalidArgument},
		{models.ErrUnknownType, codes.InvalidArgument},
		{common.ErrorNotFound, codes.NotFound},
		{fmt.Errorf("%w: barcode", common.ErrorAlreadyExists), codes.AlreadyExists},
		{common.ErrForbidden, codes.PermissionDenied},
		{common.ErrorUnauthorized, codes.Unauthenticated},
		{common.ErrTokenExpired, codes.Unauthenticated},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{errors.New("boom"), codes.Internal},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, codeOf(tc.err), tc.err.Error())
	}
}

func TestToStatus_HidesInternalDetails(t *testing.T) {
	s, _ := newTestServer()

	err := s.toStatus(context.Background(), "op", errors.New("pq: connection refused"))
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "pq")

	err = s.toStatus(context.Background(), "op", common.ErrorNotFound)
	st, _ = status.FromError(err)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Contains(t, st.Message(), "not found")
}

func TestRegisterLogin(t *testing.T) {
	s, _ := newTestServer()
	users := s.users.(*fakeUsers)

	resp, err := s.Register(context.Background(), &rpc.Credentials{Username: "ann", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "u-ann", resp.UserID)
	assert.Equal(t, "ann", resp.Username)
	assert.Equal(t, "token-ann", resp.AccessToken)

	users.regErr = common.ErrorAlreadyExists
	_, err = s.Register(context.Background(), &rpc.Credentials{Username: "ann", Password: "password1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	users.loginErr = common.ErrorUnauthorized
	_, err = s.Login(context.Background(), &rpc.Credentials{Username: "ann", Password: "bad"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	users.loginErr = errors.New("db down")
	_, err = s.Login(context.Background(), &rpc.Credentials{Username: "ann", Password: "bad"})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestRecordHandlers(t *testing.T) {
	s, recs := newTestServer()
	ctx := ownerCtx("u-ann")

	created, err := s.Create(ctx, &rpc.CreateRequest{EntityType: "food", IdempotencyKey: "tmp_1", Payload: json.RawMessage(`{"name":"Oats"}`)})
	require.NoError(t, err)
	assert.Equal(t, "food", created.EntityType)
	assert.Equal(t, "tmp_1", created.IdempotencyKey)
	assert.JSONEq(t, `{"name":"Oats"}`, string(created.Payload))

	updated, err := s.Update(ctx, &rpc.UpdateRequest{EntityType: "food", ID: created.ID, Payload: json.RawMessage(`{"name":"Rye"}`)})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	list, err := s.List(ctx, &rpc.ListRequest{EntityType: "food", From: "a", To: "z"})
	require.NoError(t, err)
	require.Len(t, list.Records, 1)
	assert.JSONEq(t, `{"name":"Rye"}`, string(list.Records[0].Payload))
	assert.Equal(t, "a", recs.filter.From)
	assert.Equal(t, "z", recs.filter.To)

	other, err := s.List(ownerCtx("u-bob"), &rpc.ListRequest{EntityType: "food"})
	require.NoError(t, err)
	assert.Empty(t, other.Records)

	_, err = s.Delete(ctx, &rpc.DeleteRequest{EntityType: "food", ID: created.ID})
	require.NoError(t, err)

	_, err = s.Delete(ctx, &rpc.DeleteRequest{EntityType: "food", ID: created.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestRecordHandlers_MapServiceErrors(t *testing.T) {
	s, recs := newTestServer()
	ctx := ownerCtx("u-ann")

	recs.err = fmt.Errorf("%w: food tmp_9", common.ErrParentNotFound)
	_, err := s.Create(ctx, &rpc.CreateRequest{EntityType: "diary_entry", Payload: json.RawMessage(`{}`)})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	recs.err = models.ErrUnknownType
	_, err = s.List(ctx, &rpc.ListRequest{EntityType: "pizza"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	recs.err = common.ErrForbidden
	_, err = s.Update(ctx, &rpc.UpdateRequest{EntityType: "food", ID: "x"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestRecordHandlers_RequireOwner(t *testing.T) {
	s, _ := newTestServer()

	_, err := s.Create(context.Background(), &rpc.CreateRequest{EntityType: "food"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	_, err = s.PresignPhotoUpload(context.Background(), &rpc.PresignRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestMediaHandlers(t *testing.T) {
	s, _ := newTestServer()
	ctx := ownerCtx("u-ann")

	up, err := s.PresignPhotoUpload(ctx, &rpc.PresignRequest{})
	require.NoError(t, err)
	assert.Equal(t, "photos/u-ann/k1", up.Key)

	down, err := s.PresignPhotoDownload(ctx, &rpc.PresignRequest{Key: up.Key})
	require.NoError(t, err)
	assert.Equal(t, "http://storage/photos/u-ann/k1", down.URL)

	_, err = s.PresignPhotoDownload(ctx, &rpc.PresignRequest{Key: "photos/u-bob/k1"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}
