package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment validation errors
var (
	// ErrPaymentIDEmpty is returned when a payment ID is empty or nil.
	ErrPaymentIDEmpty = errors.New("payment ID cannot be empty")

	// ErrPaymentRentalIDEmpty is returned when a payment's rental ID is empty or nil.
	ErrPaymentRentalIDEmpty = errors.New("payment rental ID cannot be empty")

	// ErrPaymentAmountInvalid is returned when a payment's amount is not positive.
	ErrPaymentAmountInvalid = errors.New("payment amount must be positive")

	// ErrPaymentMethodEmpty is returned when a payment's method is empty.
	ErrPaymentMethodEmpty = errors.New("payment method cannot be empty")

	// ErrPaymentStatusInvalid is returned when a payment status is not one of
	// the known settlement states.
	ErrPaymentStatusInvalid = errors.New("invalid payment status")
)

// PaymentStatus represents the settlement state of a payment.
type PaymentStatus string

// Payment settlement states. Succeeded and Failed are settled; a settled
// payment cannot be re-settled or deleted.
const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsValid reports whether the status is a known settlement state.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSucceeded, PaymentStatusFailed:
		return true
	}
	return false
}

// IsSettled reports whether the payment has reached a final outcome.
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusFailed
}

// Payment represents a funds settlement attempt for a rental. A rental owns
// at most one non-failed payment at a time; the payment back-references its
// rental without owning it.
type Payment struct {
	ID            uuid.UUID     `json:"id"`
	RentalID      uuid.UUID     `json:"rental_id"`
	Amount        float64       `json:"amount"`
	PaymentMethod string        `json:"payment_method"`
	PaymentDate   time.Time     `json:"payment_date"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewPayment creates a new pending Payment for the given rental.
// It generates a new UUID for the payment ID and sets the creation/update
// timestamps. A zero date means the payment is recorded as of now.
// Returns an error if validation fails.
func NewPayment(rentalID uuid.UUID, amount float64, method string, date time.Time) (*Payment, error) {
	if date.IsZero() {
		date = time.Now().UTC()
	}

	payment := &Payment{
		ID:            uuid.New(),
		RentalID:      rentalID,
		Amount:        amount,
		PaymentMethod: method,
		PaymentDate:   date,
		Status:        PaymentStatusPending,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	return payment, nil
}

// Validate checks if the Payment has valid data.
// Returns an error if any field fails validation.
func (p *Payment) Validate() error {
	if p.ID == uuid.Nil {
		return ErrPaymentIDEmpty
	}

	if p.RentalID == uuid.Nil {
		return ErrPaymentRentalIDEmpty
	}

	if p.Amount <= 0 {
		return ErrPaymentAmountInvalid
	}

	if strings.TrimSpace(p.PaymentMethod) == "" {
		return ErrPaymentMethodEmpty
	}

	if !p.Status.IsValid() {
		return ErrPaymentStatusInvalid
	}

	return nil
}
