package cv

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines document error kinds.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindPersistence ErrorKind = "persistence"
	KindRender      ErrorKind = "render"
	KindNotFound    ErrorKind = "not_found"
	KindConflict    ErrorKind = "conflict"
	KindConcurrency ErrorKind = "concurrency"
	KindTimeout     ErrorKind = "timeout"
	KindCanceled    ErrorKind = "canceled"
	KindInternal    ErrorKind = "internal"
	KindNotImpl     ErrorKind = "not_implemented"
)

// Error wraps errors with a kind. Validation errors carry per-field messages.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Err    error
	Fields errorslib.ValidationErrors
}

func (e *Error) Error() string {
	msg := e.Msg
	if len(e.Fields) > 0 {
		msg += " (" + e.Fields.Error() + ")"
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new document error.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// NewValidationError creates a validation error listing field failures.
func NewValidationError(msg string, fields ...errorslib.FieldError) *Error {
	return &Error{Kind: KindValidation, Msg: msg, Fields: fields}
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindInternal
	msg := err.Error()
	var fields errorslib.ValidationErrors

	var cvErr *Error
	if errors.As(err, &cvErr) {
		kind = cvErr.Kind
		fields = cvErr.Fields
		if cvErr.Msg != "" {
			msg = cvErr.Msg
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		kind = KindCanceled
	}

	switch kind {
	case KindValidation:
		return errorslib.NewValidation(msg, fields...).WithTextCode("validation")
	case KindPersistence:
		return errorslib.New(msg, errorslib.CategoryExternal).WithTextCode("persistence")
	case KindRender:
		return errorslib.New(msg, errorslib.CategoryExternal).WithTextCode("render")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindConflict:
		return errorslib.New(msg, errorslib.CategoryConflict).WithTextCode("conflict")
	case KindConcurrency:
		return errorslib.New(msg, errorslib.CategoryConflict).WithTextCode("concurrency")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	case KindNotImpl:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("not_implemented")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

// KindFromError maps an error to its document error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var cvErr *Error
	if errors.As(err, &cvErr) {
		return cvErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		switch ge.Category {
		case errorslib.CategoryValidation, errorslib.CategoryBadInput:
			return KindValidation
		case errorslib.CategoryNotFound:
			return KindNotFound
		case errorslib.CategoryConflict:
			return KindConflict
		}
	}

	return KindInternal
}

// FieldErrors returns the per-field failures carried by err, if any.
func FieldErrors(err error) errorslib.ValidationErrors {
	if err == nil {
		return nil
	}
	var cvErr *Error
	if errors.As(err, &cvErr) {
		return cvErr.Fields
	}
	if fields, ok := errorslib.GetValidationErrors(err); ok {
		return fields
	}
	return nil
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return KindFromError(err) == KindValidation
}
