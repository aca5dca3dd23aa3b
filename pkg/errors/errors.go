package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// ErrConfig covers malformed manifest lines and unreadable settings.
	ErrConfig ErrorCode = "CONFIG_ERROR"
	// ErrValidation covers entries that parse but cannot be synced.
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	// ErrIO covers filesystem failures during read, backup or commit.
	ErrIO ErrorCode = "IO_ERROR"
	// ErrSecurityRejection marks an environment file rejected as unsafe.
	ErrSecurityRejection ErrorCode = "SECURITY_REJECTION"
	// ErrTemplateWarning marks an unresolved template variable.
	ErrTemplateWarning ErrorCode = "TEMPLATE_WARNING"
)

// MepError represents a structured error with code and details
type MepError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MepError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MepError) Unwrap() error {
	return e.Wrapped
}

// Is matches any MepError carrying the same code
func (e *MepError) Is(target error) bool {
	var targetErr *MepError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MepError with the given code and message
func New(code ErrorCode, message string) *MepError {
	return &MepError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MepError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MepError {
	return &MepError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MepError. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *MepError {
	if err == nil {
		return nil
	}
	return &MepError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MepError {
	if err == nil {
		return nil
	}
	return &MepError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *MepError) WithDetail(key string, value interface{}) *MepError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *MepError) WithDetails(details map[string]interface{}) *MepError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var mepErr *MepError
	if errors.As(err, &mepErr) {
		return mepErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a MepError
func GetErrorCode(err error) ErrorCode {
	var mepErr *MepError
	if errors.As(err, &mepErr) {
		return mepErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a MepError
func GetErrorDetails(err error) map[string]interface{} {
	var mepErr *MepError
	if errors.As(err, &mepErr) {
		return mepErr.Details
	}
	return nil
}

// List collects errors found in a single pass so callers can report all of
// them together.
type List []error

// Add appends err when it is non-nil.
func (l *List) Add(err error) {
	if err != nil {
		*l = append(*l, err)
	}
}

// Err returns nil for an empty list and the list itself otherwise.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l List) Unwrap() []error {
	return l
}

// Count returns how many collected errors carry code.
func (l List) Count(code ErrorCode) int {
	n := 0
	for _, err := range l {
		if IsErrorCode(err, code) {
			n++
		}
	}
	return n
}
