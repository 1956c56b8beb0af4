package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/platform/logger"
	"github.com/motorent/backend/internal/store"
)

// PostgresPaymentStore implements the store.PaymentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPaymentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPaymentStore creates a new PostgreSQL implementation of the PaymentStore
// interface. It accepts a database connection or transaction that should be initialized
// and managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresPaymentStore(db store.DBTX, logger *slog.Logger) *PostgresPaymentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPaymentStore{
		db:     db,
		logger: logger.With(slog.String("component", "payment_store")),
	}
}

// Ensure PostgresPaymentStore implements store.PaymentStore interface
var _ store.PaymentStore = (*PostgresPaymentStore)(nil)

// WithTx implements store.PaymentStore.WithTx
func (s *PostgresPaymentStore) WithTx(tx *sql.Tx) store.PaymentStore {
	return &PostgresPaymentStore{
		db:     tx,
		logger: s.logger,
	}
}

const paymentColumns = `id, rental_id, amount, payment_method, payment_date, status, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*domain.Payment, error) {
	var payment domain.Payment
	var status string

	err := row.Scan(
		&payment.ID,
		&payment.RentalID,
		&payment.Amount,
		&payment.PaymentMethod,
		&payment.PaymentDate,
		&status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.Status = domain.PaymentStatus(status)
	return &payment, nil
}

// Create implements store.PaymentStore.Create
// Returns store.ErrInvalidEntity if the rental foreign key is violated.
// Returns store.ErrDuplicate if the rental already has a non-failed
// payment; the partial unique index on rental_id backs this at the
// database level.
func (s *PostgresPaymentStore) Create(ctx context.Context, payment *domain.Payment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := payment.Validate(); err != nil {
		log.Warn("payment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("payment_id", payment.ID.String()))
		return err
	}

	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		payment.ID,
		payment.RentalID,
		payment.Amount,
		payment.PaymentMethod,
		payment.PaymentDate,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create payment",
			slog.String("error", err.Error()),
			slog.String("payment_id", payment.ID.String()),
			slog.String("rental_id", payment.RentalID.String()))
		return MapError(err)
	}

	log.Info("payment created successfully",
		slog.String("payment_id", payment.ID.String()),
		slog.String("rental_id", payment.RentalID.String()),
		slog.String("status", string(payment.Status)))
	return nil
}

// GetByID implements store.PaymentStore.GetByID
// Returns store.ErrPaymentNotFound if the payment does not exist.
func (s *PostgresPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.getByID(ctx, id, false)
}

// GetByIDForUpdate implements store.PaymentStore.GetByIDForUpdate
// It locks the payment row for the surrounding transaction. Settlement
// relies on the lock to keep the payment and its rental in step.
func (s *PostgresPaymentStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.getByID(ctx, id, true)
}

func (s *PostgresPaymentStore) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Payment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	payment, err := scanPayment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("payment not found", slog.String("payment_id", id.String()))
			return nil, store.ErrPaymentNotFound
		}
		log.Error("failed to get payment by ID",
			slog.String("error", err.Error()),
			slog.String("payment_id", id.String()))
		return nil, MapError(err)
	}

	return payment, nil
}

// GetActiveByRental implements store.PaymentStore.GetActiveByRental
// It retrieves the rental's non-failed payment. At most one such payment
// can exist at a time.
// Returns store.ErrPaymentNotFound when the rental has none.
func (s *PostgresPaymentStore) GetActiveByRental(ctx context.Context, rentalID uuid.UUID) (*domain.Payment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE rental_id = $1
		  AND status <> 'failed'
	`

	payment, err := scanPayment(s.db.QueryRowContext(ctx, query, rentalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no active payment for rental",
				slog.String("rental_id", rentalID.String()))
			return nil, store.ErrPaymentNotFound
		}
		log.Error("failed to get active payment by rental",
			slog.String("error", err.Error()),
			slog.String("rental_id", rentalID.String()))
		return nil, MapError(err)
	}

	return payment, nil
}

// List implements store.PaymentStore.List
// It retrieves payments matching the filter in insertion order.
func (s *PostgresPaymentStore) List(
	ctx context.Context,
	filter store.PaymentFilter,
	limit, offset int,
) ([]*domain.Payment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE ($1::uuid IS NULL OR rental_id = $1)
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, filter.RentalID, limit, offset)
	if err != nil {
		log.Error("failed to query payments", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	payments := []*domain.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			log.Error("failed to scan payment row", slog.String("error", err.Error()))
			return nil, err
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed payments", slog.Int("count", len(payments)))
	return payments, nil
}

// Update implements store.PaymentStore.Update
// Returns store.ErrPaymentNotFound if the payment does not exist.
func (s *PostgresPaymentStore) Update(ctx context.Context, payment *domain.Payment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := payment.Validate(); err != nil {
		log.Warn("payment validation failed during update",
			slog.String("error", err.Error()),
			slog.String("payment_id", payment.ID.String()))
		return err
	}

	payment.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE payments
		SET amount = $1, payment_method = $2, payment_date = $3, status = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		payment.Amount,
		payment.PaymentMethod,
		payment.PaymentDate,
		payment.Status,
		payment.UpdatedAt,
		payment.ID,
	)

	if err != nil {
		log.Error("failed to update payment",
			slog.String("error", err.Error()),
			slog.String("payment_id", payment.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "payment"); err != nil {
		log.Debug("payment not found for update", slog.String("payment_id", payment.ID.String()))
		return store.ErrPaymentNotFound
	}

	log.Info("payment updated successfully",
		slog.String("payment_id", payment.ID.String()),
		slog.String("status", string(payment.Status)))
	return nil
}

// Delete implements store.PaymentStore.Delete
// Returns store.ErrPaymentNotFound if the payment does not exist.
// Settled payments are rejected by the service layer before reaching here.
func (s *PostgresPaymentStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM payments WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete payment",
			slog.String("error", err.Error()),
			slog.String("payment_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "payment"); err != nil {
		log.Debug("payment not found for delete", slog.String("payment_id", id.String()))
		return store.ErrPaymentNotFound
	}

	log.Info("payment deleted successfully", slog.String("payment_id", id.String()))
	return nil
}
