package fpl

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

// ErrorKind classifies why a fetch produced no usable document.
type ErrorKind string

const (
	KindNetwork     ErrorKind = "network"
	KindStatus      ErrorKind = "status"
	KindDecode      ErrorKind = "decode"
	KindUnavailable ErrorKind = "unavailable"
)

// ErrBodyTooLarge is the cause of a KindDecode failure for a 200 response
// larger than ClientConfig.MaxBodyBytes.
var ErrBodyTooLarge = crerr.New("response body exceeds limit")

type FetchError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fpl GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fpl GET %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first FetchError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var fetchErr *FetchError
	if crerr.As(err, &fetchErr) {
		return fetchErr.Kind, true
	}
	return "", false
}

// isCircuitFailure reports whether err should count against the breaker.
// Client errors other than 429 and decode failures do not.
func isCircuitFailure(err error) bool {
	var fetchErr *FetchError
	if !crerr.As(err, &fetchErr) {
		return true
	}
	switch fetchErr.Kind {
	case KindNetwork:
		return true
	case KindStatus:
		return fetchErr.StatusCode == 429 || fetchErr.StatusCode >= 500
	default:
		return false
	}
}
