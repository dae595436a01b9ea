// Package errors provides coded domain errors so callers can handle each
// member of the error taxonomy exhaustively instead of string-matching.
//
// Services and entities return these; the orchestration/transport layers map
// codes to user-facing results. Stores return sentinel errors
// (pkg/platform/sentinel) which services translate into these codes.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks malformed input to a value type or entity
	// constructor (negative price, empty name, out-of-range count).
	CodeValidation Code = "validation"

	// CodeBusinessRule marks a failed rule-service check (ceiling exceeded,
	// duplicate name or email, unsellable product).
	CodeBusinessRule Code = "business_rule"

	// CodeInsufficientStock marks a stock shortfall. It is a business-rule
	// failure kept under its own code because callers branch on it
	// (retry with lower quantity, surface remaining stock).
	CodeInsufficientStock Code = "insufficient_stock"

	// CodeInvalidTransition marks an illegal order-status edge.
	CodeInvalidTransition Code = "invalid_transition"

	// CodePermission marks an actor lacking authority for a mutation.
	CodePermission Code = "permission"

	// CodeNotFound marks a referenced id absent from a store or a supplied
	// collection.
	CodeNotFound Code = "not_found"

	// CodeConflict marks a lost uniqueness race detected by a store.
	CodeConflict Code = "conflict"

	// CodeInternal marks an unexpected infrastructure failure.
	CodeInternal Code = "internal"
)

// Error is a coded error with a human-readable explanation.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As chains.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
