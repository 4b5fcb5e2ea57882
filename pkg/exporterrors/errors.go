// Package exporterrors provides structured error handling for colexport with
// error categorization, key-value context and stack traces.
//
// # Overview
//
// Every failure raised by the export engine is an *Error carrying an
// ErrorType. The types mirror the failure classes of the engine:
//
//   - ErrorTypeUnsupportedType: a column type has no columnar mapping
//   - ErrorTypeInvalidCapacity: the batch row capacity is not positive
//   - ErrorTypeBuilderSealed: a column builder was used after Seal
//   - ErrorTypeSequenceExhausted: a batch was pulled after the last one
//   - ErrorTypeInternal: an internal consistency fault (a bug)
//   - ErrorTypeData: a row value does not match its column type
//
// # Basic Usage
//
//	err := exporterrors.New(exporterrors.ErrorTypeInvalidCapacity, "batch capacity must be positive").
//	    WithDetail("capacity", 0)
//
//	if errors.Is(err, exporterrors.ErrInvalidCapacity) {
//	    // handle
//	}
//
// # Thread Safety
//
// Error instances are not thread-safe for modification. Add details before
// sharing an error across goroutines.
package exporterrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	// ErrorTypeInternal represents internal consistency faults
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeUnsupportedType represents a column type with no columnar equivalent
	ErrorTypeUnsupportedType ErrorType = "unsupported_type"
	// ErrorTypeInvalidCapacity represents a non-positive batch capacity
	ErrorTypeInvalidCapacity ErrorType = "invalid_capacity"
	// ErrorTypeBuilderSealed represents use of a column builder after it was sealed
	ErrorTypeBuilderSealed ErrorType = "builder_sealed"
	// ErrorTypeSequenceExhausted represents a pull from a finished batch sequence
	ErrorTypeSequenceExhausted ErrorType = "sequence_exhausted"
	// ErrorTypeData represents value conversion and parsing errors
	ErrorTypeData ErrorType = "data"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeConnection represents database and object store connection errors
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
)

// Sentinel errors for use with errors.Is. An *Error matches a sentinel when
// both share the same ErrorType.
var (
	ErrInternal          = &Error{Type: ErrorTypeInternal, Message: "internal consistency fault"}
	ErrUnsupportedType   = &Error{Type: ErrorTypeUnsupportedType, Message: "unsupported type"}
	ErrInvalidCapacity   = &Error{Type: ErrorTypeInvalidCapacity, Message: "invalid capacity"}
	ErrBuilderSealed     = &Error{Type: ErrorTypeBuilderSealed, Message: "builder sealed"}
	ErrSequenceExhausted = &Error{Type: ErrorTypeSequenceExhausted, Message: "sequence exhausted"}
	ErrData              = &Error{Type: ErrorTypeData, Message: "data error"}
	ErrConfig            = &Error{Type: ErrorTypeConfig, Message: "config error"}
)

// Error represents a structured error with context.
//
// Fields:
//   - Type: Categorizes the error
//   - Message: Human-readable error description
//   - Cause: The underlying error that caused this error
//   - Details: Key-value pairs providing additional context
//   - Stack: Call stack at the point of error creation
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same type. This lets callers
// write errors.Is(err, exporterrors.ErrBuilderSealed).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a key-value detail to the error. Calls can be chained.
//
// Example:
//
//	err := exporterrors.New(exporterrors.ErrorTypeUnsupportedType, "no columnar mapping").
//	    WithDetail("column", 3).
//	    WithDetail("type", "NODE")
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, capturing the
// call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf is New with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context, preserving the original
// error as the cause. If the error is already a structured Error, its stack
// trace is preserved. Returns nil if the input error is nil.
//
// Example:
//
//	row, err := cur.Next()
//	if err != nil {
//	    return exporterrors.Wrap(err, exporterrors.ErrorTypeConnection, "failed to read row").
//	        WithDetail("row", n)
//	}
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the outermost structured error in the chain is of the
// given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the ErrorType of the outermost structured error in the chain,
// or ErrorTypeInternal if err carries none.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeInternal
	}
	return e.Type
}

// IsFatal reports whether the error indicates a bug in the engine rather than
// a problem with the caller's input.
func IsFatal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Type {
	case ErrorTypeInternal, ErrorTypeBuilderSealed:
		return true
	case ErrorTypeUnsupportedType, ErrorTypeInvalidCapacity, ErrorTypeSequenceExhausted,
		ErrorTypeData, ErrorTypeConfig, ErrorTypeConnection, ErrorTypeFile:
		return false
	default:
		return false
	}
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the specified number of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
