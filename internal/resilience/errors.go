package resilience

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
)

// TransientError marks an error as safe to retry.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// StatusError builds the error for a non-2xx HTTP response, marking it
// transient when the status is retryable.
func StatusError(service string, statusCode int, body []byte) error {
	snippet := string(body)
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	err := eris.Errorf("%s: unexpected status %d: %s", service, statusCode, snippet)
	if IsTransientHTTPStatus(statusCode) {
		return NewTransientError(err, statusCode)
	}
	return err
}

// HTTPStatusError is implemented by client errors that carry a response
// status code.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}

// IsTransient reports whether err (or anything it wraps) is a TransientError,
// an HTTPStatusError with a retryable status, or a recognizable network-level
// transient failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var se HTTPStatusError
	if errors.As(err, &se) {
		return IsTransientHTTPStatus(se.HTTPStatus())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"connection reset by peer", "broken pipe", "i/o timeout", "no such host", "tls handshake timeout"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status is worth retrying.
func IsTransientHTTPStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
