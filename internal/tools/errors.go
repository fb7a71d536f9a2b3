package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"workbench/internal/security"
)

// OpError is a classified operation failure. Handlers return it when they
// know the failure class; everything else is classified at the dispatch
// boundary by Classify.
type OpError struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e *OpError) Error() string {
	return e.Message
}

// Errf builds an OpError with a formatted message.
func Errf(code Code, format string, args ...any) *OpError {
	return &OpError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NOT_FOUND error for a named resource.
func NotFound(what, name string) *OpError {
	return &OpError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// MissingParam builds a MISSING_PARAMETER error naming the parameter.
func MissingParam(name string) *OpError {
	return &OpError{
		Code:    CodeMissingParameter,
		Message: fmt.Sprintf("missing required parameter: %s", name),
		Details: map[string]any{"parameter": name},
	}
}

// InvalidParam builds an INVALID_PARAMETER error naming the parameter.
func InvalidParam(name, reason string) *OpError {
	return &OpError{
		Code:    CodeInvalidParameter,
		Message: fmt.Sprintf("invalid parameter %s: %s", name, reason),
		Details: map[string]any{"parameter": name},
	}
}

// Classify maps an error to a taxonomy code. An *OpError keeps its own
// code; well-known sentinels map to their classes; anything unrecognized
// is INTERNAL.
func Classify(err error) Code {
	var opErr *OpError
	switch {
	case errors.As(err, &opErr):
		return opErr.Code
	case errors.Is(err, security.ErrTraversal), errors.Is(err, security.ErrNoRoot):
		return CodePathTraversal
	case errors.Is(err, fs.ErrNotExist):
		return CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return CodePermissionDenied
	case errors.Is(err, fs.ErrExist):
		return CodeConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

// ToResult folds an error into a failure envelope, preserving OpError
// details when present.
func ToResult(err error) Result {
	var opErr *OpError
	if errors.As(err, &opErr) && len(opErr.Details) > 0 {
		return FailDetails(opErr.Code, opErr.Message, opErr.Details)
	}
	code := Classify(err)
	msg := err.Error()
	if code == CodeInternal {
		// Never leak internals on the wire; the dispatcher logs the
		// full error server-side.
		msg = "internal error"
	}
	return Fail(code, msg)
}
