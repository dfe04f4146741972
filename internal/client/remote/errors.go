package remote

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrTransient marks failures worth retrying later: the server was not
	// reached, was overloaded, or refused the credentials of the moment.
	ErrTransient = errors.New("remote temporarily failed")
	// ErrRejected marks requests the server understood and refused. Sending
	// them again unchanged gives the same answer.
	ErrRejected = errors.New("rejected by server")

	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found on server")
	ErrConflict     = errors.New("conflicts with server state")
)

// IsRejected reports whether err is a refusal by the server.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}

// mapError classifies a gRPC error so that errors.Is works on it with either
// ErrTransient or ErrRejected, plus a more specific sentinel when one applies.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled, codes.ResourceExhausted, codes.Aborted:
		return fmt.Errorf("%w: %w: %s", ErrTransient, ErrUnavailable, st.Message())
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %w: %s", ErrTransient, ErrUnauthorized, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %w: %s", ErrRejected, ErrNotFound, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %w: %s", ErrRejected, ErrConflict, st.Message())
	case codes.InvalidArgument, codes.FailedPrecondition, codes.PermissionDenied, codes.OutOfRange, codes.Unimplemented:
		return fmt.Errorf("%w: %s: %s", ErrRejected, st.Code(), st.Message())
	default:
		return fmt.Errorf("%w: rpc error: %s: %s", ErrTransient, st.Code(), st.Message())
	}
}
