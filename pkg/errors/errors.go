// Package errors provides coded errors shared by every build stage.
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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Rule and predicate errors
	ErrPredicateInvalid ErrorCode = "PREDICATE_INVALID"
	ErrRuleInvalid      ErrorCode = "RULE_INVALID"
	ErrUnmatchedAsset   ErrorCode = "UNMATCHED_ASSET"

	// Entry errors
	ErrEntryUnresolved ErrorCode = "ENTRY_UNRESOLVED"
	ErrEntryMissing    ErrorCode = "ENTRY_MISSING"

	// Transform errors
	ErrTransformNotFound ErrorCode = "TRANSFORM_NOT_FOUND"
	ErrTransformOption   ErrorCode = "TRANSFORM_OPTION"
	ErrTransformFailure  ErrorCode = "TRANSFORM_FAILURE"

	// Emission errors
	ErrChunkConstraint ErrorCode = "CHUNK_CONSTRAINT"
	ErrOutputCollision ErrorCode = "OUTPUT_COLLISION"
	ErrOutputLocked    ErrorCode = "OUTPUT_LOCKED"
	ErrModuleNotFound  ErrorCode = "MODULE_NOT_FOUND"

	// Manifest errors
	ErrManifestFinalized  ErrorCode = "MANIFEST_FINALIZED"
	ErrManifestIncomplete ErrorCode = "MANIFEST_INCOMPLETE"
	ErrManifestRead       ErrorCode = "MANIFEST_READ"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// AssetpipeError represents a structured error with code and details
type AssetpipeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *AssetpipeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AssetpipeError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *AssetpipeError) Is(target error) bool {
	var targetErr *AssetpipeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new AssetpipeError with the given code and message
func New(code ErrorCode, message string) *AssetpipeError {
	return &AssetpipeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new AssetpipeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AssetpipeError {
	return &AssetpipeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an AssetpipeError
func Wrap(err error, code ErrorCode, message string) *AssetpipeError {
	if err == nil {
		return nil
	}
	return &AssetpipeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AssetpipeError {
	if err == nil {
		return nil
	}
	return &AssetpipeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *AssetpipeError) WithDetail(key string, value interface{}) *AssetpipeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *AssetpipeError) WithDetails(details map[string]interface{}) *AssetpipeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error, or any error it wraps, has a specific code
func IsErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, &AssetpipeError{Code: code})
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an AssetpipeError
func GetErrorCode(err error) ErrorCode {
	var apErr *AssetpipeError
	if errors.As(err, &apErr) {
		return apErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an AssetpipeError
func GetErrorDetails(err error) map[string]interface{} {
	var apErr *AssetpipeError
	if errors.As(err, &apErr) {
		return apErr.Details
	}
	return nil
}
