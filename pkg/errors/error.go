package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// Error represents a client error with error code and context
type Error struct {
	Code    ErrorCode              // Error code
	Message string                 // Custom error message (overrides default if set)
	Details map[string]interface{} // Additional context data
	Err     error                  // Underlying error (for wrapping)
	Stack   string                 // Stack trace
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code.Message()
}

// Unwrap returns the underlying error (for errors.Is and errors.As)
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the given error code
func New(code ErrorCode) *Error {
	return build(code, code.Message(), nil)
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return build(code, fmt.Sprintf(format, args...), nil)
}

// Wrap attaches code to err. An *Error is recoded in place.
func Wrap(err error, code ErrorCode) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		e.Code = code
		return e
	}
	return build(code, err.Error(), err)
}

// Wrapf wraps an error with code and formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return build(code, fmt.Sprintf(format, args...), err)
}

// build is called directly by the exported constructors; the recorded
// trace starts at their caller.
func build(code ErrorCode, msg string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: msg,
		Details: make(map[string]interface{}),
		Err:     cause,
		Stack:   callerStack(3),
	}
}

// WithMessage adds a custom message to the error
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetCode extracts the error code from any error
// If the error is not our custom Error type, returns InternalServerError
func GetCode(err error) ErrorCode {
	if err == nil {
		return Success
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}

	return InternalServerError
}

// GetError extracts our custom Error from any error
// If the error is not our custom Error type, wraps it
func GetError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e
	}

	return Wrap(err, InternalServerError)
}

// Is checks if the error has the given error code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}

	return false
}

// callerStack renders up to ten frames above skip, one per line, leaving
// out runtime frames.
func callerStack(skip int) string {
	var pcs [10]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for frame, more := frames.Next(); ; frame, more = frames.Next() {
		if !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&b, "\n\t%s:%d %s", frame.File, frame.Line, frame.Function)
		}
		if !more {
			return b.String()
		}
	}
}

// StackOf returns the trace recorded when err was created, or "" for errors
// from outside this package.
func StackOf(err error) string {
	var e *Error
	if !stderrors.As(err, &e) {
		return ""
	}
	return e.Stack
}

// Common error constructors for convenience

// ValidationError creates a local validation error. It never reaches the network.
func ValidationError(code ErrorCode, msg string) *Error {
	if msg == "" {
		return New(code)
	}
	return New(code).WithMessage(msg)
}

// RemoteError creates an error for a non-success HTTP response.
func RemoteError(status int, msg string) *Error {
	code := RemoteRejected
	if status == 401 {
		code = Unauthorized
	}
	if msg == "" {
		msg = code.Message()
	}
	return New(code).WithMessage(msg).WithDetail("status", status)
}

// NetworkError wraps a transport-level failure.
func NetworkError(err error) *Error {
	if err == nil {
		return New(NetworkFailure)
	}
	return Wrap(err, NetworkFailure)
}

// GetKind returns the taxonomy bucket of any error.
func GetKind(err error) ErrorKind {
	return GetCode(err).Kind()
}

// Status returns the HTTP status recorded on a remote error, or 0.
func Status(err error) int {
	var e *Error
	if !stderrors.As(err, &e) || e.Details == nil {
		return 0
	}
	status, _ := e.Details["status"].(int)
	return status
}
