package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorent/backend/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// User is the authenticated user's public profile
	User *domain.User `json:"user"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// UpdateUserRequest defines the payload for updating a user profile.
// Empty fields are left unchanged.
type UpdateUserRequest struct {
	Name     string `json:"name"     validate:"omitempty,max=100"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

// CarRequest defines the payload for creating or replacing a car.
type CarRequest struct {
	Brand       string  `json:"brand"         validate:"required,max=100"`
	Model       string  `json:"model"         validate:"required,max=100"`
	Year        int     `json:"year"          validate:"required,gte=1900,lte=2100"`
	PricePerDay float64 `json:"price_per_day" validate:"required,gt=0"`
}

// CreateRentalRequest defines the payload for booking a car. The acting
// user comes from the bearer token, not the payload.
type CreateRentalRequest struct {
	CarID      uuid.UUID `json:"car_id"      validate:"required"`
	StartDate  time.Time `json:"start_date"  validate:"required"`
	EndDate    time.Time `json:"end_date"    validate:"required"`
	TotalPrice *float64  `json:"total_price" validate:"omitempty,gt=0"`
}

// UpdateRentalRequest defines the payload for partially updating a
// rental. Nil fields are left unchanged.
type UpdateRentalRequest struct {
	CarID      *uuid.UUID `json:"car_id"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	TotalPrice *float64   `json:"total_price" validate:"omitempty,gt=0"`
	Status     *string    `json:"status"      validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

// CreatePaymentRequest defines the payload for recording a payment attempt.
type CreatePaymentRequest struct {
	RentalID      uuid.UUID `json:"rental_id"      validate:"required"`
	Amount        float64   `json:"amount"         validate:"required,gt=0"`
	PaymentMethod string    `json:"payment_method" validate:"required,max=50"`
	PaymentDate   time.Time `json:"payment_date"`
}

// UpdatePaymentRequest defines the payload for updating a payment.
// Setting status to succeeded settles the payment and confirms its rental.
type UpdatePaymentRequest struct {
	Amount        *float64 `json:"amount"         validate:"omitempty,gt=0"`
	PaymentMethod *string  `json:"payment_method" validate:"omitempty,max=50"`
	Status        *string  `json:"status"         validate:"omitempty,oneof=pending succeeded failed"`
}

// ListResponse wraps paginated list results.
type ListResponse struct {
	Data interface{} `json:"data"`
	Page int         `json:"page"`
	Size int         `json:"size"`
}
