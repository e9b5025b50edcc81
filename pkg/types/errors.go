package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrValidation      = errors.New("value rejected by constraint")
	ErrFormat          = errors.New("malformed value")
)

// UnsupportedTypeError reports a type with no registered descriptor that
// cannot be described structurally (it is not an enum).
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("type %q is not supported", e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// TypeMismatchError reports a value that is not an instance of the declared type.
type TypeMismatchError struct {
	Type  string
	Value any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value %v (%T) is not of type %q", e.Value, e.Value, e.Type)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ValidationError reports a value rejected by a constraint. Options holds the
// allowed values of a list constraint; Min and Max hold the bound of a range
// constraint when Bounded is set. All values are serialized.
type ValidationError struct {
	Entry   string
	Value   string
	Options []string
	Min     string
	Max     string
	Bounded bool
}

func (e *ValidationError) Error() string {
	var msg string
	switch {
	case e.Options != nil:
		msg = "value not in options: " + strings.Join(e.Options, ", ")
	case e.Bounded:
		msg = fmt.Sprintf("value not in range: [%s, %s]", e.Min, e.Max)
	default:
		msg = "invalid value: " + e.Value
	}
	if e.Entry == "" {
		return msg
	}
	return e.Entry + ": " + msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FormatError reports a string that does not parse as the target type.
type FormatError struct {
	Type  string
	Input string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot parse %q as %s", e.Input, e.Type)
	}
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Input, e.Type, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// ErrorKind names the kind of err for user-facing messages.
func ErrorKind(err error) string {
	var (
		unsupported *UnsupportedTypeError
		mismatch    *TypeMismatchError
		validation  *ValidationError
		format      *FormatError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unsupported):
		return "UnsupportedTypeError"
	case errors.As(err, &mismatch):
		return "TypeMismatchError"
	case errors.As(err, &validation):
		return "ValidationError"
	case errors.As(err, &format):
		return "FormatError"
	default:
		return "Error"
	}
}
