// Package errors provides structured error types for the rolefix engine.
// Every recoverable condition (structural skip, rename conflict, stale path)
// is represented as a typed, coded error so the caller can distinguish
// "continue" from "abort" without exception-style control flow.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeRename     ErrorType = "rename"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// FixError is a structured error type with context.
type FixError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Role        string
	Path        string
	Recoverable bool
}

// Error implements the error interface.
func (e *FixError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Role != "" {
		parts = append(parts, "role:"+e.Role)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *FixError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *FixError) Is(target error) bool {
	var t *FixError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *FixError) WithContext(key string, value interface{}) *FixError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath adds file location information.
func (e *FixError) WithPath(path string) *FixError {
	e.Path = path

	return e
}

// WithRole adds role context.
func (e *FixError) WithRole(role string) *FixError {
	e.Role = role

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *FixError {
	return &FixError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewParseError creates a document parse error. Parse errors are always
// recoverable: the offending document is skipped and the run continues.
func NewParseError(code, message string, cause error) *FixError {
	return &FixError{
		Type:        ErrorTypeParse,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewRenameError creates a directory rename error.
func NewRenameError(code, message string, cause error) *FixError {
	return &FixError{
		Type:        ErrorTypeRename,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *FixError {
	return &FixError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error. Configuration errors are
// fatal preconditions: the run aborts before any mutation.
func NewConfigError(code, message string) *FixError {
	return &FixError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *FixError {
	return &FixError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var fe *FixError
	if errors.As(err, &fe) {
		return fe.Recoverable
	}

	return false
}

// IsParseError checks if an error is a document parse error.
func IsParseError(err error) bool {
	var fe *FixError
	if errors.As(err, &fe) {
		return fe.Type == ErrorTypeParse
	}

	return false
}

// IsRenameError checks if an error is rename-related.
func IsRenameError(err error) bool {
	var fe *FixError
	if errors.As(err, &fe) {
		return fe.Type == ErrorTypeRename
	}

	return false
}

// Common error codes.
const (
	ErrCodeRootNotFound     = "ERR_ROOT_NOT_FOUND"
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodeParseFailed      = "ERR_PARSE_FAILED"
	ErrCodeForeignDocument  = "ERR_FOREIGN_DOCUMENT"
	ErrCodeRenameConflict   = "ERR_RENAME_CONFLICT"
	ErrCodeStalePath        = "ERR_STALE_PATH"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodePermissionDenied = "ERR_PERMISSION_DENIED"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// Helper functions for common errors

// ErrRootNotFound creates the fatal precondition error for a missing root.
func ErrRootNotFound(path string) *FixError {
	return NewConfigError(ErrCodeRootNotFound, "root directory not found: "+path)
}

// ErrParseFailed creates a structural-skip error for an unparseable document.
func ErrParseFailed(path string, cause error) *FixError {
	return NewParseError(ErrCodeParseFailed, "could not parse document", cause).WithPath(path)
}

// ErrRenameConflict creates the conflict error for a destination occupied by
// a plain file.
func ErrRenameConflict(role, target string) *FixError {
	return NewRenameError(
		ErrCodeRenameConflict,
		"target exists as a file: "+target,
		nil,
	).WithRole(role)
}

// ErrStalePath creates the stale-path skip error for a role whose directory
// was already moved by an ancestor rename.
func ErrStalePath(role, path string) *FixError {
	return NewRenameError(
		ErrCodeStalePath,
		"path no longer exists (likely renamed parent)",
		nil,
	).WithRole(role).WithPath(path)
}
