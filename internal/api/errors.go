package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/stuverflow/stuverflow-go/internal/common"
)

// FallbackMessage is used when the backend gives nothing usable.
const FallbackMessage = "API Error"

// APIError is the normalized error shape every client method returns.
// Message carries the backend's structured error text verbatim when present,
// or FallbackMessage otherwise. Status is the HTTP status code, or 0 for
// transport failures. Use errors.Is with common.ErrUnauthorized /
// common.ErrUnavailable to branch on the failure class.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
	cause   error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.cause }

// newStatusError builds an APIError from a non-2xx response body.
func newStatusError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Message: FallbackMessage}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		e.Message = parsed.Message
	}

	switch {
	case status == http.StatusNotFound:
		e.cause = common.ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.cause = common.ErrUnauthorized
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		e.cause = common.ErrUnavailable
	}
	return e
}

// newTransportError normalizes timeouts and connection failures.
func newTransportError(err error) *APIError {
	e := &APIError{Message: FallbackMessage, cause: err}

	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		e.cause = errors.Join(common.ErrUnavailable, err)
		return e
	}
	var oerr *net.OpError
	if errors.As(err, &oerr) {
		e.cause = errors.Join(common.ErrUnavailable, err)
	}
	return e
}

// newDecodeError covers 2xx responses whose body cannot be interpreted.
func newDecodeError(err error) *APIError {
	return &APIError{Message: FallbackMessage, cause: err}
}
