// Package common defines the shared error taxonomy and small helpers used
// across the Fitly client. Callers should match errors with errors.Is or
// inspect the kind via common.KindOf.
package common

import (
	"errors"
	"fmt"
)

// Kind classifies every error the client produces or surfaces. The set is
// closed: callers switch on the kind instead of probing error shapes.
type Kind int

const (
	// KindUnknown is the zero value for errors that carry no kind.
	KindUnknown Kind = iota

	// KindConfig: missing or invalid startup configuration. Fatal.
	KindConfig

	// KindPermission: the device denied access to a local resource.
	KindPermission

	// KindValidation: user input rejected before any network call.
	KindValidation

	// KindNetwork: the backend could not be reached at all.
	KindNetwork

	// KindBackend: the backend was reached and returned a failure.
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindPermission:
		return "permission"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carrying a Kind and an optional
// human-readable message. It wraps an underlying cause when there is one.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error of the given kind. Either message or err
// may be empty/nil.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind carried by err, unwrapping as needed.
// Errors without an embedded *Error report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

var (
	// ErrNoSelection is returned by the image picker when the user cancels
	// or the picker produces no assets. It is advisory, never fatal.
	ErrNoSelection = errors.New("no selection")

	// ErrNotSignedIn is returned by operations that require an
	// authenticated user.
	ErrNotSignedIn = errors.New("not signed in")
)
