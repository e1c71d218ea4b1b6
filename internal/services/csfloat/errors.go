package csfloat

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoListing is returned when a listing lookup by item name finds nothing.
var ErrNoListing = errors.New("csfloat: no listing found")

// ErrorKind classifies a TransportError.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota + 1
	KindStatus
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// TransportError covers every way a single request can fail: the call did
// not complete, the server answered outside 2xx, or the body was not JSON.
type TransportError struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("csfloat: %s %s: %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	case KindDecode:
		return fmt.Sprintf("csfloat: %s %s: bad JSON in response: %v", e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("csfloat: %s %s: request failed: %v", e.Method, e.URL, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// MappingError reports a decoded payload that does not match a record shape.
type MappingError struct {
	Record string
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("csfloat: %s: %s", e.Record, e.Reason)
	}
	return fmt.Sprintf("csfloat: %s.%s: %s", e.Record, e.Field, e.Reason)
}

// InvalidArgumentError is returned before any request is made.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("csfloat: invalid %s: %s", e.Argument, e.Reason)
}

func invalidArgument(arg, reason string) error {
	return &InvalidArgumentError{Argument: arg, Reason: reason}
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not a
// TransportError that got as far as a response.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

func isRejected(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindStatus
}
