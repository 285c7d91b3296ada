// Package imgerr defines the error kinds returned while configuring and
// processing an image. Every error is terminal: the caller fixes the input
// and retries the whole call.
package imgerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error
type Kind string

const (
	KindValidation              Kind = "validation"
	KindInvalidQuality          Kind = "invalid_quality"
	KindInvalidMethod           Kind = "invalid_method"
	KindInvalidBoolean          Kind = "invalid_boolean"
	KindUnknownOption           Kind = "unknown_option"
	KindIncompleteConfiguration Kind = "incomplete_configuration"
	KindFileExists              Kind = "file_exists"
	KindUnsupportedFormat       Kind = "unsupported_format"
	KindUnsupportedOutputFormat Kind = "unsupported_output_format"
	KindIO                      Kind = "io"
)

// Sentinels for errors.Is
var (
	ErrValidation              = &Error{Kind: KindValidation}
	ErrInvalidQuality          = &Error{Kind: KindInvalidQuality}
	ErrInvalidMethod           = &Error{Kind: KindInvalidMethod}
	ErrInvalidBoolean          = &Error{Kind: KindInvalidBoolean}
	ErrUnknownOption           = &Error{Kind: KindUnknownOption}
	ErrIncompleteConfiguration = &Error{Kind: KindIncompleteConfiguration}
	ErrFileExists              = &Error{Kind: KindFileExists}
	ErrUnsupportedFormat       = &Error{Kind: KindUnsupportedFormat}
	ErrUnsupportedOutputFormat = &Error{Kind: KindUnsupportedOutputFormat}
	ErrIO                      = &Error{Kind: KindIO}
)

// Error is the structured error returned by this module
type Error struct {
	Kind   Kind
	Field  string
	Value  any
	Reason string
	// Keys holds every offending name for aggregated kinds.
	Keys []string
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindUnknownOption:
		fmt.Fprintf(&b, "unknown options (%s)", strings.Join(e.Keys, ", "))
	case KindIncompleteConfiguration:
		fmt.Fprintf(&b, "cannot process, required properties (%s) not set", strings.Join(e.Keys, ", "))
	case KindFileExists:
		fmt.Fprintf(&b, "cannot process, file %s already exists", e.Path)
	case KindIO:
		fmt.Fprintf(&b, "%s %s", e.Op, e.Path)
	default:
		b.WriteString(string(e.Kind))
		if e.Field != "" {
			fmt.Fprintf(&b, ": %s", e.Field)
		}
		if e.Value != nil {
			fmt.Fprintf(&b, " (%v)", e.Value)
		}
		if e.Path != "" && e.Field == "" {
			fmt.Fprintf(&b, ": %s", e.Path)
		}
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind. The narrower validation kinds also match ErrValidation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return t.Kind == KindValidation && e.IsValidation()
}

// IsValidation reports whether the error describes malformed scalar input
func (e *Error) IsValidation() bool {
	switch e.Kind {
	case KindValidation, KindInvalidQuality, KindInvalidMethod, KindInvalidBoolean:
		return true
	}
	return false
}

// Validation reports a malformed field value
func Validation(field string, value any, reason string) *Error {
	return &Error{Kind: KindValidation, Field: field, Value: value, Reason: reason}
}

// InvalidQuality reports a quality outside 0-100
func InvalidQuality(value any) *Error {
	return &Error{Kind: KindInvalidQuality, Field: "quality", Value: value, Reason: "must be an integer between 0 and 100"}
}

// InvalidMethod reports an unknown resize method
func InvalidMethod(value any) *Error {
	return &Error{Kind: KindInvalidMethod, Field: "method", Value: value, Reason: "must be fill or fit"}
}

// InvalidBoolean reports a value that is neither a bool nor 0/1
func InvalidBoolean(field string, value any) *Error {
	return &Error{Kind: KindInvalidBoolean, Field: field, Value: value, Reason: "must be boolean (0 or 1 permitted)"}
}

// UnknownOption lists every unrecognised option key
func UnknownOption(keys []string) *Error {
	return &Error{Kind: KindUnknownOption, Keys: keys}
}

// IncompleteConfiguration lists every required field that is still unset
func IncompleteConfiguration(fields []string) *Error {
	return &Error{Kind: KindIncompleteConfiguration, Keys: fields}
}

// FileExists reports an existing destination when overwriting is not allowed
func FileExists(path string) *Error {
	return &Error{Kind: KindFileExists, Path: path}
}

// UnsupportedFormat reports a source the decoder does not recognise
func UnsupportedFormat(path string, format string, err error) *Error {
	e := &Error{Kind: KindUnsupportedFormat, Path: path, Err: err}
	if format != "" {
		e.Reason = "format " + format
	}
	return e
}

// UnsupportedOutputFormat reports an output file name with the wrong extension
func UnsupportedOutputFormat(fileName, want string) *Error {
	return &Error{Kind: KindUnsupportedOutputFormat, Field: "file_name", Value: fileName, Reason: "extension must be ." + want}
}

// NoEncoder reports an output format that cannot be encoded
func NoEncoder(format string) *Error {
	return &Error{Kind: KindUnsupportedOutputFormat, Field: "format", Value: format, Reason: "no encoder for this format"}
}

// IO wraps a filesystem or codec failure with the operation and path.
// Errors that already carry a kind are returned unchanged.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}
