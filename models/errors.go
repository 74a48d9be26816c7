package models

import (
	"errors"
	"net/http"
)

// Error taxonomy shared by repositories, services and controllers. Handlers
// translate these into HTTP status codes with HTTPStatus; nothing below the
// controller layer writes a response.
var (
	// ErrValidation means the input failed shape or enum checks.
	ErrValidation = errors.New("validation error")
	// ErrAuth means the caller presented no identity or a bad credential.
	ErrAuth = errors.New("unauthorized")
	// ErrNotFound means no record matched, including records owned by
	// someone else. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrPersistence means the backing store was unreachable or a write
	// failed.
	ErrPersistence = errors.New("persistence error")
	// ErrUpstream means an external dependency failed.
	ErrUpstream = errors.New("upstream error")
)

// HTTPStatus maps a taxonomy error to its response status code. Unknown
// errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Response is the standard JSON envelope returned by all endpoints.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
