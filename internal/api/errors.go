package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/questiongen/internal/api/shared"
	"github.com/phrazzld/questiongen/internal/auth"
	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/task"
)

const genericErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrExtraction):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	// Queue full or shutting down
	case task.IsUnavailable(err):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. Validation errors keep their field message since
// it only echoes what the client sent.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		return "Validation error: " + vErr.Error()

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, domain.ErrExtraction):
		return "No readable text found in the uploaded document"

	case errors.Is(err, domain.ErrNotFound):
		return "Task not found"

	case errors.Is(err, domain.ErrConflict):
		return "Task is still running and cannot be deleted"

	case errors.Is(err, generation.ErrContentBlocked):
		return "Content was blocked by the language model's safety filters"

	case errors.Is(err, task.ErrQueueFull):
		return "Too many pending tasks, try again later"

	case errors.Is(err, task.ErrQueueClosed):
		return "Service is shutting down"

	case errors.Is(err, generation.ErrInvalidConfig):
		return "Question generation is not configured"

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Failed to generate questions"

	default:
		return genericErrorMessage
	}
}

// HandleAPIError maps err to a status code and sanitized message and writes
// the error response. fallback replaces the generic message for unclassified
// errors when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if fallback != "" && msg == genericErrorMessage {
		msg = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}
