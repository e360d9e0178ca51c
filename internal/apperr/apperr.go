// Package apperr defines the error taxonomy shared by every core operation.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindArchived
	KindValidation
	KindVerification
	KindPermission
	KindConflict
	KindConfiguration
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindArchived:
		return "archived"
	case KindValidation:
		return "validation"
	case KindVerification:
		return "verification"
	case KindPermission:
		return "permission"
	case KindConflict:
		return "conflict"
	case KindConfiguration:
		return "configuration"
	}
	return "unknown"
}

// Error is a classified failure returned by services to the transport layer.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown id or name.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Archived reports an operation against an archived entity.
func Archived(format string, args ...interface{}) *Error {
	return newf(KindArchived, format, args...)
}

// Validation reports a type, option or shape mismatch.
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// Verification reports a group verification predicate rejection.
func Verification(format string, args ...interface{}) *Error {
	return newf(KindVerification, format, args...)
}

// Permission reports a role mismatch for the requested operation.
func Permission(format string, args ...interface{}) *Error {
	return newf(KindPermission, format, args...)
}

// Conflict reports a uniqueness violation surfaced from the store.
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// Configuration reports a misconfiguration such as an unknown verification
// function name.
func Configuration(format string, args ...interface{}) *Error {
	return newf(KindConfiguration, format, args...)
}

// KindOf extracts the kind from err, unwrapping as needed. Errors outside the
// taxonomy report KindUnknown.
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
