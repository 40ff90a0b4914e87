// Package apperr defines the small closed set of error kinds the service
// layer reports. The HTTP layer maps each kind to a status code exactly once.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors not created by this package.
	KindUnknown Kind = iota

	// KindConnectivity means the store is not reachable; no query was attempted.
	KindConnectivity

	// KindValidation means the request was rejected before touching the store.
	KindValidation

	// KindStore means an otherwise valid store operation failed.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindValidation:
		return "validation"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error is an application error of a given Kind with a human-readable detail.
type Error struct {
	Kind   Kind
	Detail string

	// Attempts is the connection attempt count, set for KindConnectivity.
	Attempts int

	Err error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.Err }

// Unavailable returns a connectivity error carrying the attempt count.
func Unavailable(attempts int) *Error {
	return &Error{
		Kind:     KindConnectivity,
		Detail:   "database is not connected",
		Attempts: attempts,
	}
}

// Invalid returns a validation error; detail is a short machine-readable code.
func Invalid(detail string) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

// Store wraps a failed store operation.
func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Detail: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
