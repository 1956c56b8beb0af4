package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/motorent/backend/internal/domain"
)

// RentalFilter narrows rental listings. Nil fields mean "no constraint".
type RentalFilter struct {
	UserID *uuid.UUID
	CarID  *uuid.UUID
}

// RentalStore defines the interface for rental data persistence.
type RentalStore interface {
	// Create saves a new rental to the store.
	// Returns ErrInvalidEntity if the user or car foreign key is violated.
	// Returns ErrIdempotencyKeyExists if a rental with the same idempotency
	// key was already persisted.
	Create(ctx context.Context, rental *domain.Rental) error

	// GetByID retrieves a rental by its unique ID.
	// Returns ErrRentalNotFound if the rental does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error)

	// GetByIDForUpdate retrieves a rental by ID and locks its row for the
	// duration of the surrounding transaction. It must be called on a
	// transaction-bound store (see WithTx).
	// Returns ErrRentalNotFound if the rental does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Rental, error)

	// GetByIdempotencyKey retrieves the rental created with the given
	// idempotency key. Returns ErrRentalNotFound if no such rental exists.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Rental, error)

	// FindOverlapping returns the rentals for carID whose status is pending
	// or confirmed and whose [start_date, end_date) interval intersects
	// [start, end). excludeID, when non-nil, omits that rental from the
	// result (used when re-validating an existing rental).
	//
	// The check-then-insert sequence is racy unless this runs inside the
	// same transaction as the subsequent write, with the car row locked
	// (CarStore.GetByIDForUpdate).
	FindOverlapping(
		ctx context.Context,
		carID uuid.UUID,
		start, end time.Time,
		excludeID *uuid.UUID,
	) ([]*domain.Rental, error)

	// List retrieves rentals matching the filter in insertion order.
	List(ctx context.Context, filter RentalFilter, limit, offset int) ([]*domain.Rental, error)

	// Update modifies an existing rental's details.
	// Returns ErrRentalNotFound if the rental does not exist.
	Update(ctx context.Context, rental *domain.Rental) error

	// CountActiveByCar returns the number of rentals for carID whose status
	// is pending or confirmed. Used to guard car deletion.
	CountActiveByCar(ctx context.Context, carID uuid.UUID) (int, error)

	// WithTx returns a new RentalStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) RentalStore
}
