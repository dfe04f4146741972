package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// codeOf classifies a service error. Clients retry Internal and
// Unauthenticated and treat the other codes as final.
func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, common.ErrParentNotFound):
		return codes.FailedPrecondition
	case errors.Is(err, common.ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrorNotFound):
		return codes.NotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return codes.AlreadyExists
	case errors.Is(err, common.ErrForbidden):
		return codes.PermissionDenied
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}

// toStatus converts err for the wire. Internal details stay in the log.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	code := codeOf(err)
	if code == codes.Internal {
		s.logger.Error(ctx, "request failed", "op", op, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	s.logger.Info(ctx, "request rejected", "op", op, "code", code.String(), "error", err)
	return status.Error(code, err.Error())
}
