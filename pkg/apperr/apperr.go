// Package apperr defines the typed error taxonomy shared by the domain
// services. Handlers translate kinds into HTTP statuses in one place;
// services never return raw pgx or fmt errors across the API boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	// KindNotFound covers missing entities; an entity belonging to another
	// clinic is reported identically so tenancy cannot be probed.
	KindNotFound Kind = "NOT_FOUND"

	// KindValidation covers malformed input shape.
	KindValidation Kind = "VALIDATION"

	// KindConflict covers business-rule violations: double bookings,
	// holiday collisions, duplicate identifiers, illegal status moves.
	KindConflict Kind = "CONFLICT"

	// KindUnauthorized covers missing or invalid credentials.
	KindUnauthorized Kind = "UNAUTHORIZED"

	// KindForbidden covers callers lacking a role or tenant membership.
	KindForbidden Kind = "FORBIDDEN"

	// KindFormat covers unparseable persisted data, e.g. a corrupt
	// working-hours string. It should never occur on a healthy database.
	KindFormat Kind = "FORMAT"

	// KindInternal is everything else.
	KindInternal Kind = "INTERNAL"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized builds a KindUnauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden builds a KindForbidden error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Format builds a KindFormat error wrapping the parse failure.
func Format(message string, err error) *Error {
	return &Error{Kind: KindFormat, Message: message, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindInternal when err is not an
// *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// HTTPStatus maps a kind to its HTTP status equivalent. KindFormat is a
// data-integrity bug and surfaces as an internal error.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
