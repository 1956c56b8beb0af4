package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Rental validation errors
var (
	// ErrRentalIDEmpty is returned when a rental ID is empty or nil.
	ErrRentalIDEmpty = errors.New("rental ID cannot be empty")

	// ErrRentalUserIDEmpty is returned when a rental's user ID is empty or nil.
	ErrRentalUserIDEmpty = errors.New("rental user ID cannot be empty")

	// ErrRentalCarIDEmpty is returned when a rental's car ID is empty or nil.
	ErrRentalCarIDEmpty = errors.New("rental car ID cannot be empty")

	// ErrRentalPriceInvalid is returned when a rental's total price is negative.
	ErrRentalPriceInvalid = errors.New("rental total price cannot be negative")

	// ErrRentalStatusInvalid is returned when a rental status is not one of
	// the known lifecycle states.
	ErrRentalStatusInvalid = errors.New("invalid rental status")
)

// RentalStatus represents the lifecycle state of a rental.
type RentalStatus string

// Rental lifecycle states. Completed and Cancelled are terminal.
const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusConfirmed RentalStatus = "confirmed"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// IsValid reports whether the status is a known lifecycle state.
func (s RentalStatus) IsValid() bool {
	switch s {
	case RentalStatusPending, RentalStatusConfirmed,
		RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
//
//	pending   -> confirmed | cancelled
//	confirmed -> completed | cancelled
func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	switch s {
	case RentalStatusPending:
		return next == RentalStatusConfirmed || next == RentalStatusCancelled
	case RentalStatusConfirmed:
		return next == RentalStatusCompleted || next == RentalStatusCancelled
	}
	return false
}

// Rental represents a booking of a car by a user over a half-open date
// interval [StartDate, EndDate). Two rentals of the same car whose status is
// pending or confirmed must never overlap.
type Rental struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	CarID      uuid.UUID    `json:"car_id"`
	StartDate  time.Time    `json:"start_date"`
	EndDate    time.Time    `json:"end_date"`
	TotalPrice float64      `json:"total_price"`
	Status     RentalStatus `json:"status"`

	// IdempotencyKey deduplicates retried creation requests. Empty for
	// rentals created without a key.
	IdempotencyKey string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRental creates a new pending Rental for the given user, car and period.
// It generates a new UUID for the rental ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewRental(userID, carID uuid.UUID, start, end time.Time, totalPrice float64) (*Rental, error) {
	rental := &Rental{
		ID:         uuid.New(),
		UserID:     userID,
		CarID:      carID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: totalPrice,
		Status:     RentalStatusPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := rental.Validate(); err != nil {
		return nil, err
	}

	return rental, nil
}

// Validate checks if the Rental has valid data.
// Returns an error if any field fails validation.
func (r *Rental) Validate() error {
	if r.ID == uuid.Nil {
		return ErrRentalIDEmpty
	}

	if r.UserID == uuid.Nil {
		return ErrRentalUserIDEmpty
	}

	if r.CarID == uuid.Nil {
		return ErrRentalCarIDEmpty
	}

	if !r.EndDate.After(r.StartDate) {
		return ErrInvalidDateRange
	}

	if r.TotalPrice < 0 {
		return ErrRentalPriceInvalid
	}

	if !r.Status.IsValid() {
		return ErrRentalStatusInvalid
	}

	return nil
}

// Overlaps reports whether the rental's [StartDate, EndDate) interval
// intersects [start, end). Touching boundaries do not overlap.
func (r *Rental) Overlaps(start, end time.Time) bool {
	return r.StartDate.Before(end) && start.Before(r.EndDate)
}

// RentalDays returns the number of billable days in [start, end).
// Partial days are rounded up, with a minimum of one day.
func RentalDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// RentalPrice computes the default total price for renting a car at
// pricePerDay over [start, end).
func RentalPrice(pricePerDay float64, start, end time.Time) float64 {
	return pricePerDay * float64(RentalDays(start, end))
}
