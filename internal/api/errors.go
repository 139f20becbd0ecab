package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/phrazzld/comix-bridge/internal/archive"
	"github.com/phrazzld/comix-bridge/internal/bridge"
	"github.com/phrazzld/comix-bridge/internal/task"
)

var (
	// ErrOutsideLibrary is returned for paths that escape the library root.
	ErrOutsideLibrary = errors.New("path is outside the library")

	// ErrInvalidParameter marks malformed query or path parameters.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Caller errors
	case bridge.IsIllegalArgument(err),
		errors.Is(err, ErrOutsideLibrary),
		errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, archive.ErrPageNotFound),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound

	// Cancelled while running
	case errors.Is(err, task.ErrCancelled):
		return http.StatusConflict

	// Archive could be read but not understood
	case archive.IsDomain(err):
		return http.StatusUnprocessableEntity

	case errors.Is(err, task.ErrRuntimeStopped):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

var domainMessages = map[string]string{
	"unsupported_format": "Unsupported archive format",
	"corrupt_archive":    "Archive is corrupt",
	"no_pages":           "Archive contains no pages",
	"page_not_found":     "Page not found",
	"decode_failed":      "Page image could not be decoded",
	"image_too_large":    "Page image is too large",
	"hash_failed":        "Failed to compute content hash",
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var berr *bridge.Error
	switch {
	case errors.As(err, &berr) && berr.Kind == bridge.KindIllegalArgument:
		// Validation messages never carry caller data.
		return berr.Message

	case errors.Is(err, ErrOutsideLibrary):
		return "Path is outside the library"

	case errors.Is(err, ErrInvalidParameter):
		return strings.TrimPrefix(err.Error(), ErrInvalidParameter.Error()+": ")

	case errors.Is(err, fs.ErrNotExist):
		return "Comic book not found"

	case errors.Is(err, task.ErrCancelled):
		return "Task was cancelled"

	case errors.Is(err, task.ErrRuntimeStopped):
		return "Service is shutting down"

	case archive.IsDomain(err):
		return domainMessages[archive.Code(err)]

	default:
		return "An unexpected error occurred"
	}
}

// ErrorCode returns the machine-readable code sent alongside the message.
func ErrorCode(err error) string {
	var berr *bridge.Error
	switch {
	case errors.As(err, &berr):
		return berr.Code
	case archive.IsDomain(err):
		return archive.Code(err)
	case errors.Is(err, task.ErrCancelled):
		return "cancelled"
	default:
		return ""
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'pageQuery.Width' Error:Field validation for 'Width' failed on the 'lte' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := strings.ToLower(fieldParts[1])
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "gte", "min":
		return "too small"
	case "lte", "max":
		return "too large"
	default:
		return "validation failed"
	}
}
