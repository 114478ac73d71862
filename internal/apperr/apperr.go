// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperr defines the typed error kinds surfaced by the catalog and
// taxonomy services, and helpers for classifying wrapped errors.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	// KindNotFound means a referenced category or event does not exist.
	KindNotFound Kind = "not_found"

	// KindInvalidOperation means the action is semantically disallowed,
	// such as deleting the sentinel category.
	KindInvalidOperation Kind = "invalid_operation"

	// KindConflict means a caller-detectable invalid state transition,
	// such as making a category its own parent.
	KindConflict Kind = "conflict"

	// KindIntegrityViolation means an invariant the system depends on is
	// broken (sentinel missing, reassignment incomplete). Not recoverable
	// by the caller; logged with full context.
	KindIntegrityViolation Kind = "integrity_violation"

	// KindReferentialConflict means the store refused to delete a row that
	// is still referenced by others.
	KindReferentialConflict Kind = "referential_conflict"

	// KindValidation means the request payload failed field validation.
	KindValidation Kind = "validation"

	// KindUnauthorized means the caller is not authenticated or the
	// credentials are wrong.
	KindUnauthorized Kind = "unauthorized"

	// KindForbidden means the caller is authenticated but lacks the role
	// required for the operation.
	KindForbidden Kind = "forbidden"
)

// Error is an application error with a kind, a caller-facing message and
// optional per-field details.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail attaches a field-level detail and returns the error.
func (e *Error) WithDetail(field, message string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[field] = message
	return e
}

// WithCause wraps an underlying error and returns the error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// InvalidOperation creates a KindInvalidOperation error.
func InvalidOperation(format string, args ...any) *Error {
	return New(KindInvalidOperation, format, args...)
}

// Conflict creates a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// IntegrityViolation creates a KindIntegrityViolation error.
func IntegrityViolation(format string, args ...any) *Error {
	return New(KindIntegrityViolation, format, args...)
}

// ReferentialConflict creates a KindReferentialConflict error.
func ReferentialConflict(format string, args ...any) *Error {
	return New(KindReferentialConflict, format, args...)
}

// Validation creates a KindValidation error.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// Unauthorized creates a KindUnauthorized error.
func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

// Forbidden creates a KindForbidden error.
func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

// KindOf returns the kind of err, or the empty Kind if err is not an
// application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}
