package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"room not found", ErrRoomNotFound, http.StatusNotFound},
		{"wrapped member not found", fmt.Errorf("resolve buyer 42: %w", ErrMemberNotFound), http.StatusNotFound},
		{"invalid request", fmt.Errorf("accept: %w", ErrInvalidRequest), http.StatusBadRequest},
		{"access denied", ErrAccessDenied, http.StatusForbidden},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", fmt.Errorf("parse: %w", ErrTokenExpired), http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, HTTPStatusFromError(tc.err))
		})
	}
}

func TestIsDomain(t *testing.T) {
	require.True(t, IsDomain(fmt.Errorf("x: %w", ErrRoomNotFound)))
	require.True(t, IsDomain(ErrAccessDenied))
	require.False(t, IsDomain(errors.New("connection reset")))
	require.False(t, IsDomain(ErrSendFailed))
}
