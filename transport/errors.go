package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCircuitOpen is returned without contacting a host that keeps failing.
var ErrCircuitOpen = errors.New("circuit open")

// TransportError is a network failure or a non-2xx response.
// StatusCode is zero when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether repeating the request could succeed.
func (e *TransportError) Temporary() bool {
	if errors.Is(e.Err, ErrCircuitOpen) {
		return false
	}

	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// DecodeError means the body did not have the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
