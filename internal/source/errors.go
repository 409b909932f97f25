package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrNotFound means the source has no data for the requested key,
	// e.g. the bank did not publish a bulletin on a holiday.
	ErrNotFound = errors.New("no data for key")

	// ErrEmptyResult is returned when a collection or snapshot finished
	// with zero entries. Callers show a warning and stop.
	ErrEmptyResult = errors.New("empty result")
)

// TransportError covers network failures, timeouts and non-2xx replies.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the same request may succeed.
func (e *TransportError) Temporary() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500 && e.StatusCode < 600:
		return true
	case e.StatusCode != 0:
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(e.Err, &ne) {
		return true
	}
	return false
}

// DecodeError wraps a payload that could not be parsed.
type DecodeError struct {
	Source Kind
	Err    error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("%s: decode: %v", e.Source, e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing credential or setting. It only
// disables the feature that needs it.
type ConfigurationError struct {
	Feature string
	Key     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: missing configuration %s", e.Feature, e.Key)
}

// StatusError maps an HTTP status to the taxonomy above. 404 becomes
// ErrNotFound so callers can tell "nothing published" from a failure.
func StatusError(op, url string, code int) error {
	if code == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", op, url, ErrNotFound)
	}
	return &TransportError{Op: op, URL: url, StatusCode: code}
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Temporary()
	}
	return false
}
