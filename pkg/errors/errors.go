package errors

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrRoomNotFound   = errors.New("chat room not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrAccessDenied   = errors.New("access denied")
	ErrSendFailed     = errors.New("send failed")
	ErrConnClosed     = errors.New("connection closed")
)

// IsDomain reports whether err is one of the typed failures the chat core
// returns to the boundary (as opposed to infrastructure failures).
func IsDomain(err error) bool {
	return errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrAccessDenied)
}

func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
