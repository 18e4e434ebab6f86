// Package apperr defines the error taxonomy surfaced to API callers.
// Every kind is terminal; callers never retry.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation"
	KindPermissionDenied Kind = "permission_denied"
	KindConflict         Kind = "conflict"
	KindUnauthorized     Kind = "unauthorized"
)

// Error is a user-visible failure. Field names the offending input when
// the failure concerns one.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// FieldValidation reports a validation failure attributed to field.
func FieldValidation(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func PermissionDenied(msg string) error {
	return &Error{Kind: KindPermissionDenied, Message: msg}
}

func Conflict(field, msg string) error {
	return &Error{Kind: KindConflict, Field: field, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
