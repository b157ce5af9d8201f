// Package errors provides the standardized error taxonomy used by the stores
// and the backend client.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNetwork          ErrorCode = "NETWORK_ERROR"
	ErrCodeService          ErrorCode = "SERVICE_ERROR"
	ErrCodeDecode           ErrorCode = "DECODE_ERROR"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeUploadFailed     ErrorCode = "UPLOAD_FAILED"
	ErrCodeNotAuthenticated ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeStorage          ErrorCode = "STORAGE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Retryable  bool      `json:"retryable"`
	StatusCode int       `json:"statusCode,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches on error code so callers can compare against the sentinel values below.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// Sentinels for errors.Is checks. They carry only a code.
var (
	ErrNotFound         = &StandardError{Code: ErrCodeNotFound}
	ErrValidation       = &StandardError{Code: ErrCodeValidationFailed}
	ErrNotAuthenticated = &StandardError{Code: ErrCodeNotAuthenticated}
	ErrUploadFailed     = &StandardError{Code: ErrCodeUploadFailed}
	ErrService          = &StandardError{Code: ErrCodeService}
	ErrNetwork          = &StandardError{Code: ErrCodeNetwork}
	ErrStorage          = &StandardError{Code: ErrCodeStorage}
)

// NewNetworkError wraps a transport failure.
func NewNetworkError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetwork,
		Message:   fmt.Sprintf("request to %s failed", endpoint),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTimeoutError wraps a request that exceeded its deadline.
func NewTimeoutError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("request to %s timed out", endpoint),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewServiceError carries a non-2xx response. message is the service-supplied
// text and is kept verbatim.
func NewServiceError(status int, message, details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeService,
		Message:    message,
		Details:    details,
		Retryable:  status >= 500,
		StatusCode: status,
		Timestamp:  time.Now().UTC(),
	}
}

// NewDecodeError reports a response body that did not match the expected shape.
func NewDecodeError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecode,
		Message:   fmt.Sprintf("unexpected response from %s", endpoint),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationError(field, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotAuthenticatedError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotAuthenticated,
		Message:   "Not signed in",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadFailedError is the generic upload-failure signal.
func NewUploadFailedError(err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   "CV upload failed",
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

func NewStorageError(op, key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorage,
		Message:   fmt.Sprintf("storage %s failed", op),
		Details:   fmt.Sprintf("key: %s, error: %v", key, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	return Normalize(err).Message
}

// CodeOf returns the error code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsRetryable reports whether err is a retryable StandardError. Nothing in this
// module retries on its own; callers may use it to decide.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
