// Package domainerrors provides coded errors for domain and service layers.
//
// Services attach a Code to every error they return so transport layers can
// map failures to protocol responses without string matching, and so tests
// can assert on failure kinds instead of messages. Stores return sentinel
// errors (pkg/platform/sentinel); services translate those into coded errors
// at the boundary.
//
// Import with the dErrors alias:
//
//	dErrors "labfhir/pkg/domain-errors"
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers that need to branch on failure kind.
type Code string

const (
	CodeInternal           Code = "internal"
	CodeValidation         Code = "validation"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
)

// Error is a coded error. It participates in errors.Is/errors.As chains so
// wrapped causes stay inspectable.
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

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.err
}

// Is matches another coded error by code and message, so tests can assert
// require.ErrorIs(t, err, New(CodeX, "msg")) without holding the original
// instance.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == te.code && e.msg == te.msg
}

// Code returns the error's classification.
func (e *Error) Code() Code {
	return e.code
}

// New creates a coded error with no underlying cause.
func New(code Code, msg string) error {
	return &Error{code: code, msg: msg}
}

// Wrap attaches a code and message to an underlying error. A nil err yields
// a plain coded error so call sites don't need to branch.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return New(code, msg)
	}
	return &Error{code: code, msg: msg, err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.code == code {
			return true
		}
		err = de.err
	}
	return false
}

// Is is an alias for HasCode, reading naturally in assertions.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none. Useful for metrics labels and response mapping.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}
