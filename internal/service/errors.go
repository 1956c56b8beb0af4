// Package service provides application-level services for managing users,
// cars, rentals, and payments.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrCarUnavailable indicates the requested period overlaps an existing
	// pending or confirmed rental for the same car.
	// API layer should map this to HTTP 409 Conflict.
	ErrCarUnavailable = errors.New("car is not available for the requested period")

	// ErrCarHasActiveRentals indicates a car cannot be deleted while pending
	// or confirmed rentals reference it.
	// API layer should map this to HTTP 409 Conflict.
	ErrCarHasActiveRentals = errors.New("car has active rentals")

	// ErrDuplicatePayment indicates the rental already has a pending or
	// succeeded payment.
	// API layer should map this to HTTP 409 Conflict.
	ErrDuplicatePayment = errors.New("rental already has an active payment")

	// ErrPaymentAmountMismatch indicates the payment amount does not equal
	// the rental's total price.
	// API layer should map this to HTTP 422 Unprocessable Entity.
	ErrPaymentAmountMismatch = errors.New("payment amount does not match rental total")

	// ErrPaymentSettled indicates an operation that requires a pending
	// payment was attempted on a settled one.
	// API layer should map this to HTTP 409 Conflict.
	ErrPaymentSettled = errors.New("payment has already been settled")

	// ErrRentalNotPayable indicates the rental is in a terminal state and
	// cannot accept a payment.
	// API layer should map this to HTTP 409 Conflict.
	ErrRentalNotPayable = errors.New("rental cannot accept a payment in its current state")
)
