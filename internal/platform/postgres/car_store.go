package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/platform/logger"
	"github.com/motorent/backend/internal/store"
)

// PostgresCarStore implements the store.CarStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCarStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCarStore creates a new PostgreSQL implementation of the CarStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresCarStore(db store.DBTX, logger *slog.Logger) *PostgresCarStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCarStore{
		db:     db,
		logger: logger.With(slog.String("component", "car_store")),
	}
}

// Ensure PostgresCarStore implements store.CarStore interface
var _ store.CarStore = (*PostgresCarStore)(nil)

// WithTx implements store.CarStore.WithTx
func (s *PostgresCarStore) WithTx(tx *sql.Tx) store.CarStore {
	return &PostgresCarStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CarStore.Create
// Returns validation errors from the domain Car if data is invalid.
func (s *PostgresCarStore) Create(ctx context.Context, car *domain.Car) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := car.Validate(); err != nil {
		log.Warn("car validation failed during create",
			slog.String("error", err.Error()),
			slog.String("car_id", car.ID.String()))
		return err
	}

	query := `
		INSERT INTO cars (id, brand, model, year, price_per_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		car.ID,
		car.Brand,
		car.Model,
		car.Year,
		car.PricePerDay,
		car.CreatedAt,
		car.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create car",
			slog.String("error", err.Error()),
			slog.String("car_id", car.ID.String()))
		return MapError(err)
	}

	log.Info("car created successfully",
		slog.String("car_id", car.ID.String()),
		slog.String("brand", car.Brand),
		slog.String("model", car.Model))
	return nil
}

// GetByID implements store.CarStore.GetByID
// Returns store.ErrCarNotFound if the car does not exist.
func (s *PostgresCarStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Car, error) {
	return s.getByID(ctx, id, false)
}

// GetByIDForUpdate implements store.CarStore.GetByIDForUpdate
// It locks the car row with SELECT ... FOR UPDATE so concurrent
// availability checks on the same car serialize. Only meaningful on a
// transaction-bound store.
// Returns store.ErrCarNotFound if the car does not exist.
func (s *PostgresCarStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Car, error) {
	return s.getByID(ctx, id, true)
}

func (s *PostgresCarStore) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Car, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, brand, model, year, price_per_day, created_at, updated_at
		FROM cars
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var car domain.Car
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&car.ID,
		&car.Brand,
		&car.Model,
		&car.Year,
		&car.PricePerDay,
		&car.CreatedAt,
		&car.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("car not found", slog.String("car_id", id.String()))
			return nil, store.ErrCarNotFound
		}
		log.Error("failed to get car by ID",
			slog.String("error", err.Error()),
			slog.String("car_id", id.String()))
		return nil, MapError(err)
	}

	return &car, nil
}

// List implements store.CarStore.List
// It retrieves cars matching the filter, newest first. The filter's zero
// values add no constraint, so an empty filter lists the whole fleet page
// by page.
func (s *PostgresCarStore) List(
	ctx context.Context,
	filter store.CarFilter,
	limit, offset int,
) ([]*domain.Car, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, brand, model, year, price_per_day, created_at, updated_at
		FROM cars
	`)

	args := []interface{}{}
	conds := []string{}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		conds = append(conds, "brand = $"+strconv.Itoa(len(args)))
	}
	if filter.PriceMax > 0 {
		args = append(args, filter.PriceMax)
		conds = append(conds, "price_per_day <= $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	args = append(args, limit)
	sb.WriteString(" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)))
	args = append(args, offset)
	sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to query cars", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cars := []*domain.Car{}
	for rows.Next() {
		var car domain.Car
		err := rows.Scan(
			&car.ID,
			&car.Brand,
			&car.Model,
			&car.Year,
			&car.PricePerDay,
			&car.CreatedAt,
			&car.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan car row", slog.String("error", err.Error()))
			return nil, err
		}
		cars = append(cars, &car)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed cars", slog.Int("count", len(cars)))
	return cars, nil
}

// Update implements store.CarStore.Update
// Returns store.ErrCarNotFound if the car does not exist.
func (s *PostgresCarStore) Update(ctx context.Context, car *domain.Car) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := car.Validate(); err != nil {
		log.Warn("car validation failed during update",
			slog.String("error", err.Error()),
			slog.String("car_id", car.ID.String()))
		return err
	}

	car.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE cars
		SET brand = $1, model = $2, year = $3, price_per_day = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		car.Brand,
		car.Model,
		car.Year,
		car.PricePerDay,
		car.UpdatedAt,
		car.ID,
	)

	if err != nil {
		log.Error("failed to update car",
			slog.String("error", err.Error()),
			slog.String("car_id", car.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "car"); err != nil {
		log.Debug("car not found for update", slog.String("car_id", car.ID.String()))
		return store.ErrCarNotFound
	}

	log.Info("car updated successfully", slog.String("car_id", car.ID.String()))
	return nil
}

// Delete implements store.CarStore.Delete
// Returns store.ErrCarNotFound if the car does not exist. Referential
// guards (no deletion while rentals reference the car) live in the
// service layer and in the database's foreign key constraint.
func (s *PostgresCarStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cars WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete car",
			slog.String("error", err.Error()),
			slog.String("car_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "car"); err != nil {
		log.Debug("car not found for delete", slog.String("car_id", id.String()))
		return store.ErrCarNotFound
	}

	log.Info("car deleted successfully", slog.String("car_id", id.String()))
	return nil
}
