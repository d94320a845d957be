package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"
	ErrCodeNoWatchRoots   ErrorCode = "NO_WATCH_ROOTS"

	// Lifecycle errors
	ErrCodeSetupFailed  ErrorCode = "SETUP_FAILED"
	ErrCodeReloadFailed ErrorCode = "RELOAD_FAILED"
	ErrCodeWatchFailed  ErrorCode = "WATCH_FAILED"

	// Dispatch errors
	ErrCodeDispatchFailed ErrorCode = "DISPATCH_FAILED"
	ErrCodePluginUnknown  ErrorCode = "PLUGIN_UNKNOWN"

	// Console errors
	ErrCodeConsoleInput ErrorCode = "CONSOLE_INPUT"

	// Command execution errors
	ErrCodeCommandFailed  ErrorCode = "COMMAND_FAILED"
	ErrCodeCommandTimeout ErrorCode = "COMMAND_TIMEOUT"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// GuardError represents a structured error with context
type GuardError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *GuardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GuardError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *GuardError) WithDetail(key string, value interface{}) *GuardError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *GuardError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new GuardError
func New(code ErrorCode, message string) *GuardError {
	return &GuardError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a GuardError
func Wrap(err error, code ErrorCode, message string) *GuardError {
	return &GuardError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific GuardError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if ge, ok := err.(*GuardError); ok {
		return ge.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, or ErrCodeInternal if it is
// not a GuardError.
func GetCode(err error) ErrorCode {
	if ge, ok := err.(*GuardError); ok {
		return ge.Code
	}
	return ErrCodeInternal
}
