package dynsyn

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedSyntax is returned when a factory is given a Syntax value
	// outside the registered set.
	ErrUnsupportedSyntax = errors.New("dynsyn: unsupported syntax")

	// ErrSerializerClosed is returned by Write/Flush after Close.
	ErrSerializerClosed = errors.New("dynsyn: serializer is closed")
)

// UnknownSyntaxError reports a media type or file extension that resolves to
// no registered syntax.
type UnknownSyntaxError struct {
	Identifier string
}

func (e *UnknownSyntaxError) Error() string {
	return fmt.Sprintf("dynsyn: no syntax corresponds to %q", e.Identifier)
}

// UnsupportedConfigError reports a configuration option that is valid in
// general but not supported by the requested syntax's backend. Options are
// never silently ignored.
type UnsupportedConfigError struct {
	Syntax Syntax
	Option string
	Reason string
}

func (e *UnsupportedConfigError) Error() string {
	return fmt.Sprintf("dynsyn: %s does not support %s: %s", e.Syntax.Name(), e.Option, e.Reason)
}

// BackendError reports that a syntax backend could not be constructed or
// driven for reasons unrelated to document content.
type BackendError struct {
	Syntax Syntax
	Err    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("dynsyn: %s backend: %v", e.Syntax.Name(), e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ParseError reports malformed document content. Line is 1-based and 0 when
// the backend provides no position; Statement holds the offending input
// excerpt when available.
type ParseError struct {
	Syntax    Syntax
	Line      int
	Statement string
	Err       error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("dynsyn: %s parse error", e.Syntax.Name())
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	msg += ": " + e.Err.Error()
	if e.Statement != "" {
		msg += fmt.Sprintf(" (in %q)", excerpt(e.Statement, 60))
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// SerializeError reports a statement that cannot be expressed in the target
// syntax, or a failure of the underlying writer.
type SerializeError struct {
	Syntax Syntax
	Err    error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("dynsyn: %s serialize error: %v", e.Syntax.Name(), e.Err)
}

func (e *SerializeError) Unwrap() error { return e.Err }

// ErrorCode is a stable machine-readable classification of package errors.
type ErrorCode string

const (
	CodeUnknownSyntax     ErrorCode = "UNKNOWN_SYNTAX"
	CodeUnsupportedConfig ErrorCode = "UNSUPPORTED_CONFIG"
	CodeBackendError      ErrorCode = "BACKEND_ERROR"
	CodeParseError        ErrorCode = "PARSE_ERROR"
	CodeSerializeError    ErrorCode = "SERIALIZE_ERROR"
	CodeUnknown           ErrorCode = "UNKNOWN"
)

// Code classifies err. It unwraps, so wrapped package errors still map to
// their code. Errors from outside the package map to CodeUnknown.
func Code(err error) ErrorCode {
	var (
		unknownSyntax *UnknownSyntaxError
		unsupported   *UnsupportedConfigError
		backend       *BackendError
		parse         *ParseError
		serialize     *SerializeError
	)
	switch {
	case err == nil:
		return CodeUnknown
	case errors.As(err, &unknownSyntax), errors.Is(err, ErrUnsupportedSyntax):
		return CodeUnknownSyntax
	case errors.As(err, &unsupported):
		return CodeUnsupportedConfig
	case errors.As(err, &parse):
		return CodeParseError
	case errors.As(err, &serialize), errors.Is(err, ErrSerializerClosed):
		return CodeSerializeError
	case errors.As(err, &backend):
		return CodeBackendError
	}
	return CodeUnknown
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
