package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/motorent/backend/internal/api/shared"
	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/service"
	"github.com/motorent/backend/internal/service/auth"
	"github.com/motorent/backend/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors: duplicates, booking overlaps, and state machine
	// violations all surface as 409
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrCarUnavailable),
		errors.Is(err, service.ErrCarHasActiveRentals),
		errors.Is(err, service.ErrDuplicatePayment),
		errors.Is(err, service.ErrPaymentSettled),
		errors.Is(err, service.ErrRentalNotPayable),
		errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict

	// Semantically invalid input
	case errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrPaymentAmountMismatch),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusUnprocessableEntity

	// Malformed identifiers
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Store unavailability is retryable
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrCarNotFound):
		return "Car not found"

	case errors.Is(err, store.ErrRentalNotFound):
		return "Rental not found"

	case errors.Is(err, store.ErrPaymentNotFound):
		return "Payment not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, service.ErrCarUnavailable):
		return "Car is not available for the requested period"

	case errors.Is(err, service.ErrCarHasActiveRentals):
		return "Car has active rentals and cannot be deleted"

	case errors.Is(err, service.ErrDuplicatePayment):
		return "Rental already has an active payment"

	case errors.Is(err, service.ErrPaymentSettled):
		return "Payment has already been settled"

	case errors.Is(err, service.ErrRentalNotPayable):
		return "Rental cannot accept a payment in its current state"

	case errors.Is(err, domain.ErrInvalidStateTransition):
		return "Invalid status transition"

	// Invalid input
	case errors.Is(err, domain.ErrInvalidDateRange):
		return "End date must be after start date"

	case errors.Is(err, service.ErrPaymentAmountMismatch):
		return "Payment amount does not match the rental total"

	case errors.Is(err, domain.ErrValidation):
		return sanitizedValidationMessage(err)

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier format"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Referenced entity does not exist"

	case errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// sanitizedValidationMessage extracts the field-level message from a
// domain validation error without exposing wrapped internals.
func sanitizedValidationMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return "Invalid " + ve.Field + ": " + ve.Message
	}
	return "Validation error"
}

// requestValidationError converts a request DTO validation failure into a
// domain validation error so it maps to 422 with a sanitized field message.
// Validator errors are reduced to the first failing field; anything else
// keeps ErrValidation semantics with a generic message.
func requestValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(fe.Field(), fieldErrorMessage(fe), domain.ErrValidation)
	}
	return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
}

// fieldErrorMessage renders a human message for a single failed rule
// without exposing struct names or validator internals.
func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// HandleAPIError writes an error response for the given error using the
// standard status code and message mapping. An empty userMessage selects
// the sanitized message derived from the error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}
