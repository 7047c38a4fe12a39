// Package errors provides structured error types used across the application.
// We prefer these over raw fmt.Errorf strings so callers can branch with
// errors.Is / errors.As and still get the operation that failed.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError indicates invalid input/config provided by a caller/user.
type ValidationError struct {
	Op     string   // where it happened (package.Function)
	Msg    string   // human friendly message
	Fields []string // individual problems, when more than one was found
	Err    error    // underlying cause (optional)
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Fields, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("validation: %s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("validation: %s: %s", e.Op, msg)
}

func (e *ValidationError) Unwrap() error     { return e.Err }
func (e *ValidationError) Operation() string { return e.Op }
func (e *ValidationError) Message() string   { return e.Msg }
func (e *ValidationError) Context() map[string]any {
	return map[string]any{"op": e.Op, "msg": e.Msg, "fields": e.Fields}
}

func NewValidation(op, msg string, err error) error {
	return &ValidationError{Op: op, Msg: msg, Err: err}
}

// NewValidationFields reports several problems found in one pass.
func NewValidationFields(op, msg string, fields []string) error {
	return &ValidationError{Op: op, Msg: msg, Fields: append([]string(nil), fields...)}
}

// IOError covers file and stream failures (roles files, templates).
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("io: %s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("io: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func NewIO(op, path string, err error) error { return &IOError{Op: op, Path: path, Err: err} }

// BizError is for domain logic failures that aren't programmer bugs.
type BizError struct {
	Op  string
	Msg string
	Err error
}

func (e *BizError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("biz: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("biz: %s: %s", e.Op, e.Msg)
}

func (e *BizError) Unwrap() error           { return e.Err }
func (e *BizError) Operation() string       { return e.Op }
func (e *BizError) Message() string         { return e.Msg }
func (e *BizError) Context() map[string]any { return map[string]any{"op": e.Op, "msg": e.Msg} }

func NewBiz(op, msg string, err error) error { return &BizError{Op: op, Msg: msg, Err: err} }

// Kind sentinels: if errors.Is(err, errs.ErrValidation) via Is below.
var (
	ErrValidation = &ValidationError{}
	ErrIO         = &IOError{}
	ErrBiz        = &BizError{}
)

// Is reports whether err carries the same kind as target.
// Kind targets are matched with errors.As; anything else falls back to errors.Is.
func Is(err, target error) bool {
	if err == nil || target == nil {
		return errors.Is(err, target)
	}
	switch target.(type) {
	case *ValidationError:
		var v *ValidationError
		return errors.As(err, &v)
	case *IOError:
		var i *IOError
		return errors.As(err, &i)
	case *BizError:
		var b *BizError
		return errors.As(err, &b)
	default:
		return errors.Is(err, target)
	}
}
