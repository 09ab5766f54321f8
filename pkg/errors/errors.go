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
	ErrConfigLoad   ErrorCode = "CONFIG_LOAD"

	// Sync errors
	ErrNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE"
	ErrMergeConflict      ErrorCode = "MERGE_CONFLICT"
	ErrStashConflict      ErrorCode = "STASH_CONFLICT"
	ErrLocked             ErrorCode = "LOCKED"
	ErrNoRepo             ErrorCode = "NO_REPO"
	ErrVCS                ErrorCode = "VCS"

	// Marked file errors. These describe a target that is already in the
	// desired state and are reported as informational.
	ErrAlreadyMarked ErrorCode = "ALREADY_MARKED"
	ErrNotMarked     ErrorCode = "NOT_MARKED"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrBackup        ErrorCode = "BACKUP"
)

// CsyncError represents a structured error with code and details
type CsyncError struct {
	Code    ErrorCode
	Message string
	// Hint is an optional remediation shown to the operator.
	Hint    string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CsyncError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CsyncError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CsyncError) Is(target error) bool {
	var targetErr *CsyncError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CsyncError with the given code and message
func New(code ErrorCode, message string) *CsyncError {
	return &CsyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CsyncError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CsyncError {
	return &CsyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CsyncError
func Wrap(err error, code ErrorCode, message string) *CsyncError {
	if err == nil {
		return nil
	}
	return &CsyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CsyncError {
	if err == nil {
		return nil
	}
	return &CsyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CsyncError) WithDetail(key string, value interface{}) *CsyncError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithHint attaches a remediation hint
func (e *CsyncError) WithHint(hint string) *CsyncError {
	e.Hint = hint
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var csyncErr *CsyncError
	if errors.As(err, &csyncErr) {
		return csyncErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CsyncError
func GetErrorCode(err error) ErrorCode {
	var csyncErr *CsyncError
	if errors.As(err, &csyncErr) {
		return csyncErr.Code
	}
	return ErrUnknown
}

// GetHint returns the first remediation hint found in the error chain
func GetHint(err error) string {
	for err != nil {
		var csyncErr *CsyncError
		if !errors.As(err, &csyncErr) {
			return ""
		}
		if csyncErr.Hint != "" {
			return csyncErr.Hint
		}
		err = csyncErr.Wrapped
	}
	return ""
}

// IsInformational reports whether err only says the target was already in
// the requested state.
func IsInformational(err error) bool {
	return IsErrorCode(err, ErrAlreadyMarked) || IsErrorCode(err, ErrNotMarked)
}
