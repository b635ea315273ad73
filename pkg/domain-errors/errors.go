// Package domainerrors provides coded domain errors. Services return these;
// the HTTP layer maps codes to statuses and stores never construct them
// (stores return pkg/platform/sentinel errors which services translate).
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure for callers and the transport layer.
type Code string

// Ambient codes shared by every module.
const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"
)

// Settlement-core codes. Each is a local, deterministic validation failure:
// the operation is rejected before any write occurs and the caller may
// resubmit with corrected arguments.
const (
	CodeUnauthorized          Code = "unauthorized"
	CodeRoleNotGranted        Code = "role_not_granted"
	CodeDuplicateProperty     Code = "duplicate_property"
	CodeMismatchedAttestation Code = "mismatched_attestation"
	CodeAlreadyFractionalized Code = "already_fractionalized"
	CodeInsufficientBalance   Code = "insufficient_balance"
	CodeZeroAmount            Code = "zero_amount"
	CodeListingNotOpen        Code = "listing_not_open"
	CodePoolAlreadyExists     Code = "pool_already_exists"
	CodeNothingToClaim        Code = "nothing_to_claim"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Code returns the classification of this error.
func (e *Error) Code() Code { return e.code }

// Message returns the caller-safe description without the wrapped cause.
func (e *Error) Message() string { return e.msg }

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{code: code, msg: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. If err is nil,
// Wrap returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from err, walking the wrap chain. Uncoded errors
// classify as CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return CodeInternal
}
