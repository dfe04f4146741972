package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreconditionFamily(t *testing.T) {
	for _, err := range []error{ErrNotAuthenticated, ErrParentNotFound, ErrRecordNotFound, ErrInvalidInput, ErrNotSynced} {
		require.ErrorIs(t, err, ErrPrecondition, err.Error())
		require.NotErrorIs(t, err, ErrLocalPersistence)
	}
}

func TestLocalPersistence(t *testing.T) {
	require.NoError(t, LocalPersistence("insert", nil))

	cause := errors.New("disk I/O error")
	err := LocalPersistence("insert", cause)
	require.ErrorIs(t, err, ErrLocalPersistence)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "insert")
	require.NotErrorIs(t, err, ErrPrecondition)
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("secret")
	WipeByteArray(b)
	require.Equal(t, make([]byte, 6), b)
	WipeByteArray(nil)
}
