package errors

import (
	"errors"
	"fmt"
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
	ErrFileAccess   ErrorCode = "FILE_ACCESS"

	// Link and pool errors
	ErrLinkNotFound ErrorCode = "LINK_NOT_FOUND"
	ErrLinkBroken   ErrorCode = "LINK_BROKEN"
	ErrEntryCorrupt ErrorCode = "ENTRY_CORRUPT"
	ErrStaging      ErrorCode = "STAGING"

	// GC errors
	ErrLockContention ErrorCode = "LOCK_CONTENTION"

	// External collaborator errors
	ErrExternalTool  ErrorCode = "EXTERNAL_TOOL"
	ErrManifestFetch ErrorCode = "MANIFEST_FETCH"
	ErrManifestParse ErrorCode = "MANIFEST_PARSE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
)

// PoolupError represents a structured error with code and details
type PoolupError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PoolupError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PoolupError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PoolupError) Is(target error) bool {
	var targetErr *PoolupError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PoolupError with the given code and message
func New(code ErrorCode, message string) *PoolupError {
	return &PoolupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PoolupError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PoolupError {
	return &PoolupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PoolupError
func Wrap(err error, code ErrorCode, message string) *PoolupError {
	if err == nil {
		return nil
	}
	return &PoolupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PoolupError {
	if err == nil {
		return nil
	}
	return &PoolupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PoolupError) WithDetail(key string, value interface{}) *PoolupError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var poolupErr *PoolupError
	if errors.As(err, &poolupErr) {
		return poolupErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PoolupError
func GetErrorCode(err error) ErrorCode {
	var poolupErr *PoolupError
	if errors.As(err, &poolupErr) {
		return poolupErr.Code
	}
	return ErrUnknown
}
