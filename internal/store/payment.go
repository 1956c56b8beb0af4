package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/motorent/backend/internal/domain"
)

// PaymentFilter narrows payment listings. Nil fields mean "no constraint".
type PaymentFilter struct {
	RentalID *uuid.UUID
}

// PaymentStore defines the interface for payment data persistence.
type PaymentStore interface {
	// Create saves a new payment to the store.
	// Returns ErrInvalidEntity if the rental foreign key is violated.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by its unique ID.
	// Returns ErrPaymentNotFound if the payment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetByIDForUpdate retrieves a payment by ID and locks its row for the
	// duration of the surrounding transaction. It must be called on a
	// transaction-bound store (see WithTx); settlement relies on the lock
	// to keep payment and rental status in step.
	// Returns ErrPaymentNotFound if the payment does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetActiveByRental retrieves the non-failed payment for the given
	// rental, if any. Returns ErrPaymentNotFound when the rental has no
	// pending or succeeded payment.
	GetActiveByRental(ctx context.Context, rentalID uuid.UUID) (*domain.Payment, error)

	// List retrieves payments matching the filter in insertion order.
	List(ctx context.Context, filter PaymentFilter, limit, offset int) ([]*domain.Payment, error)

	// Update modifies an existing payment's details.
	// Returns ErrPaymentNotFound if the payment does not exist.
	Update(ctx context.Context, payment *domain.Payment) error

	// Delete removes a payment from the store by its ID.
	// Returns ErrPaymentNotFound if the payment does not exist.
	// The service layer must reject deletion of settled payments.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new PaymentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) PaymentStore
}
