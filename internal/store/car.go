package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/motorent/backend/internal/domain"
)

// CarFilter narrows car listings. Zero values mean "no constraint".
type CarFilter struct {
	Brand    string
	PriceMax float64
}

// CarStore defines the interface for car data persistence.
type CarStore interface {
	// Create saves a new car to the store.
	// Returns validation errors from the domain Car if data is invalid.
	Create(ctx context.Context, car *domain.Car) error

	// GetByID retrieves a car by its unique ID.
	// Returns ErrCarNotFound if the car does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Car, error)

	// GetByIDForUpdate retrieves a car by ID and locks its row for the
	// duration of the surrounding transaction. It must be called on a
	// transaction-bound store (see WithTx); the lock serializes concurrent
	// availability checks for the same car.
	// Returns ErrCarNotFound if the car does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Car, error)

	// List retrieves cars matching the filter, ordered by creation time,
	// newest first.
	List(ctx context.Context, filter CarFilter, limit, offset int) ([]*domain.Car, error)

	// Update modifies an existing car's details.
	// Returns ErrCarNotFound if the car does not exist.
	Update(ctx context.Context, car *domain.Car) error

	// Delete removes a car from the store by its ID.
	// Returns ErrCarNotFound if the car does not exist.
	// The service layer must reject deletion while the car has
	// non-terminal rentals.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CarStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CarStore
}
