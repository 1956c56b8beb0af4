package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/platform/logger"
	"github.com/motorent/backend/internal/store"
)

// PostgresRentalStore implements the store.RentalStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRentalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRentalStore creates a new PostgreSQL implementation of the RentalStore
// interface. It accepts a database connection or transaction that should be initialized
// and managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresRentalStore(db store.DBTX, logger *slog.Logger) *PostgresRentalStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRentalStore{
		db:     db,
		logger: logger.With(slog.String("component", "rental_store")),
	}
}

// Ensure PostgresRentalStore implements store.RentalStore interface
var _ store.RentalStore = (*PostgresRentalStore)(nil)

// WithTx implements store.RentalStore.WithTx
func (s *PostgresRentalStore) WithTx(tx *sql.Tx) store.RentalStore {
	return &PostgresRentalStore{
		db:     tx,
		logger: s.logger,
	}
}

const rentalColumns = `id, user_id, car_id, start_date, end_date, total_price, status, idempotency_key, created_at, updated_at`

// nullableKey maps an empty idempotency key to NULL so the unique index
// only applies to rentals that actually carry a key.
func nullableKey(key string) sql.NullString {
	return sql.NullString{String: key, Valid: key != ""}
}

func scanRental(row interface{ Scan(...interface{}) error }) (*domain.Rental, error) {
	var rental domain.Rental
	var status string
	var key sql.NullString

	err := row.Scan(
		&rental.ID,
		&rental.UserID,
		&rental.CarID,
		&rental.StartDate,
		&rental.EndDate,
		&rental.TotalPrice,
		&status,
		&key,
		&rental.CreatedAt,
		&rental.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rental.Status = domain.RentalStatus(status)
	rental.IdempotencyKey = key.String
	return &rental, nil
}

// Create implements store.RentalStore.Create
// Returns store.ErrInvalidEntity if the user or car foreign key is violated.
// Returns store.ErrIdempotencyKeyExists if a rental with the same idempotency
// key was already persisted.
func (s *PostgresRentalStore) Create(ctx context.Context, rental *domain.Rental) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rental.Validate(); err != nil {
		log.Warn("rental validation failed during create",
			slog.String("error", err.Error()),
			slog.String("rental_id", rental.ID.String()))
		return err
	}

	query := `
		INSERT INTO rentals (` + rentalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		rental.ID,
		rental.UserID,
		rental.CarID,
		rental.StartDate,
		rental.EndDate,
		rental.TotalPrice,
		rental.Status,
		nullableKey(rental.IdempotencyKey),
		rental.CreatedAt,
		rental.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate idempotency key during rental creation",
				slog.String("rental_id", rental.ID.String()))
			return store.ErrIdempotencyKeyExists
		}

		// A violated reference means the user or car disappeared between
		// the service checks and the insert.
		switch ForeignKeyConstraint(err) {
		case "rentals_user_id_fkey":
			log.Warn("rental references missing user",
				slog.String("user_id", rental.UserID.String()))
			return fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
		case "rentals_car_id_fkey":
			log.Warn("rental references missing car",
				slog.String("car_id", rental.CarID.String()))
			return fmt.Errorf("%w: %v", store.ErrCarNotFound, err)
		}

		log.Error("failed to create rental",
			slog.String("error", err.Error()),
			slog.String("rental_id", rental.ID.String()),
			slog.String("car_id", rental.CarID.String()))
		return MapError(err)
	}

	log.Info("rental created successfully",
		slog.String("rental_id", rental.ID.String()),
		slog.String("user_id", rental.UserID.String()),
		slog.String("car_id", rental.CarID.String()),
		slog.String("status", string(rental.Status)))
	return nil
}

// GetByID implements store.RentalStore.GetByID
// Returns store.ErrRentalNotFound if the rental does not exist.
func (s *PostgresRentalStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	return s.getByID(ctx, id, false)
}

// GetByIDForUpdate implements store.RentalStore.GetByIDForUpdate
// It locks the rental row for the surrounding transaction so status
// transitions cannot interleave. Only meaningful on a transaction-bound
// store.
func (s *PostgresRentalStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	return s.getByID(ctx, id, true)
}

func (s *PostgresRentalStore) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Rental, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rental, err := scanRental(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("rental not found", slog.String("rental_id", id.String()))
			return nil, store.ErrRentalNotFound
		}
		log.Error("failed to get rental by ID",
			slog.String("error", err.Error()),
			slog.String("rental_id", id.String()))
		return nil, MapError(err)
	}

	return rental, nil
}

// GetByIdempotencyKey implements store.RentalStore.GetByIdempotencyKey
// Returns store.ErrRentalNotFound if no rental carries the given key.
func (s *PostgresRentalStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Rental, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE idempotency_key = $1
	`

	rental, err := scanRental(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("rental not found by idempotency key")
			return nil, store.ErrRentalNotFound
		}
		log.Error("failed to get rental by idempotency key",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return rental, nil
}

// FindOverlapping implements store.RentalStore.FindOverlapping
// It returns pending and confirmed rentals for carID whose half-open
// [start_date, end_date) interval intersects [start, end). Rentals that
// merely touch at a boundary do not overlap. excludeID, when non-nil,
// omits that rental, which lets an update re-validate against everyone
// else.
func (s *PostgresRentalStore) FindOverlapping(
	ctx context.Context,
	carID uuid.UUID,
	start, end time.Time,
	excludeID *uuid.UUID,
) ([]*domain.Rental, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE car_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_date < $3
		  AND $2 < end_date
	`
	args := []interface{}{carID, start, end}
	if excludeID != nil {
		query += ` AND id <> $4`
		args = append(args, *excludeID)
	}
	query += ` ORDER BY start_date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query overlapping rentals",
			slog.String("error", err.Error()),
			slog.String("car_id", carID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	rentals := []*domain.Rental{}
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			log.Error("failed to scan rental row", slog.String("error", err.Error()))
			return nil, err
		}
		rentals = append(rentals, rental)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("found overlapping rentals",
		slog.String("car_id", carID.String()),
		slog.Int("count", len(rentals)))
	return rentals, nil
}

// List implements store.RentalStore.List
// It retrieves rentals matching the filter in insertion order.
func (s *PostgresRentalStore) List(
	ctx context.Context,
	filter store.RentalFilter,
	limit, offset int,
) ([]*domain.Rental, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE ($1::uuid IS NULL OR user_id = $1)
		  AND ($2::uuid IS NULL OR car_id = $2)
		ORDER BY created_at
		LIMIT $3 OFFSET $4
	`

	rows, err := s.db.QueryContext(ctx, query, filter.UserID, filter.CarID, limit, offset)
	if err != nil {
		log.Error("failed to query rentals", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	rentals := []*domain.Rental{}
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			log.Error("failed to scan rental row", slog.String("error", err.Error()))
			return nil, err
		}
		rentals = append(rentals, rental)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed rentals", slog.Int("count", len(rentals)))
	return rentals, nil
}

// Update implements store.RentalStore.Update
// Returns store.ErrRentalNotFound if the rental does not exist.
func (s *PostgresRentalStore) Update(ctx context.Context, rental *domain.Rental) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rental.Validate(); err != nil {
		log.Warn("rental validation failed during update",
			slog.String("error", err.Error()),
			slog.String("rental_id", rental.ID.String()))
		return err
	}

	rental.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE rentals
		SET user_id = $1, car_id = $2, start_date = $3, end_date = $4,
		    total_price = $5, status = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		rental.UserID,
		rental.CarID,
		rental.StartDate,
		rental.EndDate,
		rental.TotalPrice,
		rental.Status,
		rental.UpdatedAt,
		rental.ID,
	)

	if err != nil {
		log.Error("failed to update rental",
			slog.String("error", err.Error()),
			slog.String("rental_id", rental.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "rental"); err != nil {
		log.Debug("rental not found for update", slog.String("rental_id", rental.ID.String()))
		return store.ErrRentalNotFound
	}

	log.Info("rental updated successfully",
		slog.String("rental_id", rental.ID.String()),
		slog.String("status", string(rental.Status)))
	return nil
}

// CountActiveByCar implements store.RentalStore.CountActiveByCar
// It counts the pending and confirmed rentals referencing carID.
func (s *PostgresRentalStore) CountActiveByCar(ctx context.Context, carID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*)
		FROM rentals
		WHERE car_id = $1
		  AND status IN ('pending', 'confirmed')
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, carID).Scan(&count); err != nil {
		log.Error("failed to count active rentals",
			slog.String("error", err.Error()),
			slog.String("car_id", carID.String()))
		return 0, MapError(err)
	}

	return count, nil
}
