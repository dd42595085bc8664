// Package errors defines the closed error taxonomy of the ledger core.
//
// Every failure that crosses the core boundary is an *Error carrying one of
// the Kind constants plus a structured details bag. Store, cache, and broker
// errors are mapped to this taxonomy at the infrastructure boundary; anything
// uncategorised wraps as KindInternal.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable classification of a ledger error.
type Kind string

// The closed set of error kinds.
const (
	KindValidation          Kind = "validation"
	KindUnauthorized        Kind = "unauthorized"
	KindForbidden           Kind = "forbidden"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindInsufficientFunds   Kind = "insufficient_funds"
	KindCurrencyMismatch    Kind = "currency_mismatch"
	KindAmountExceedsLimit  Kind = "amount_exceeds_limit"
	KindBalanceExceedsLimit Kind = "balance_exceeds_limit"
	KindInvalidTransfer     Kind = "invalid_transfer"
	KindInvalidState        Kind = "invalid_state"
	KindRateLimitExceeded   Kind = "rate_limit_exceeded"
	KindInternal            Kind = "internal"
)

// Error is the single error type the core returns. Details carries
// kind-specific structured context (requested/available amounts, limits,
// reset times) for the caller.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches a structured details bag and returns the error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// Wrap classifies an underlying error under the given kind. A nil err yields
// a plain taxonomy error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

// Internal wraps an uncategorised failure. The raw cause stays available for
// logging but is never rendered to callers.
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// Validation builds a field-level validation error.
func Validation(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("validation failed for %q: %s", field, message),
		Details: map[string]any{"field": field},
	}
}

// KindOf returns the kind of err, or KindInternal when err is not a taxonomy
// error. A nil err has no kind and returns "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// DetailsOf returns the details bag of err, or nil.
func DetailsOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// As is a convenience wrapper over errors.As for the taxonomy type.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
