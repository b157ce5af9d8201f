// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
)

// Handler reports failed operations with a consistent set of log fields.
type Handler struct {
	logger Logger
}

// Logger receives failure details at debug level; the user already sees the
// message returned by Handle.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
}

func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle logs err for operation and returns the text to show the user.
func (h *Handler) Handle(operation string, err error) string {
	if err == nil {
		return ""
	}
	stdErr := Normalize(err)
	if h.logger != nil {
		h.logger.Debug("operation failed", map[string]interface{}{
			"operation":     operation,
			"errorCode":     string(stdErr.Code),
			"errorCategory": GetErrorCategory(stdErr.Code),
			"message":       stdErr.Message,
			"details":       stdErr.Details,
			"retryable":     stdErr.Retryable,
		})
	}
	return Display(err)
}

// Display returns the user-facing text for err. Errors outside the taxonomy
// are shown as-is rather than as a generic message.
func Display(err error) string {
	if err == nil {
		return ""
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) && stdErr.Message != "" {
		return stdErr.Message
	}
	return err.Error()
}

// GetErrorCategory groups codes for log filtering.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeNetwork, ErrCodeTimeout:
		return "transport"
	case ErrCodeService, ErrCodeDecode:
		return "backend"
	case ErrCodeValidationFailed, ErrCodeNotAuthenticated, ErrCodeNotFound:
		return "client"
	case ErrCodeUploadFailed:
		return "upload"
	case ErrCodeStorage:
		return "storage"
	default:
		return "internal"
	}
}
