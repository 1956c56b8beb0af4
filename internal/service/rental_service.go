package service

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

// RentalServiceError is a custom error type for rental service errors.
type RentalServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for RentalServiceError.
func (e *RentalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rental service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("rental service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *RentalServiceError) Unwrap() error {
	return e.Err
}

// NewRentalServiceError creates a new RentalServiceError.
func NewRentalServiceError(operation, message string, err error) *RentalServiceError {
	return &RentalServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CreateRentalParams carries the attributes of a new booking.
// TotalPrice, when nil, is computed from the car's daily rate and the
// rental period. IdempotencyKey, when set, makes retried requests return
// the originally created rental instead of double-booking.
type CreateRentalParams struct {
	UserID         uuid.UUID
	CarID          uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	TotalPrice     *float64
	IdempotencyKey string
}

// UpdateRentalParams carries the mutable attributes of an existing
// rental. Nil fields are left unchanged.
type UpdateRentalParams struct {
	CarID      *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	TotalPrice *float64
	Status     *domain.RentalStatus
}

// RentalService provides booking lifecycle operations.
type RentalService interface {
	// CreateRental books a car for a period after verifying availability.
	// Returns ErrCarUnavailable if the period overlaps an existing pending
	// or confirmed rental for the same car.
	CreateRental(ctx context.Context, params CreateRentalParams) (*domain.Rental, error)

	// GetRental retrieves a rental by ID.
	GetRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error)

	// ListRentals retrieves rentals matching the filter in insertion order.
	ListRentals(ctx context.Context, filter store.RentalFilter, limit, offset int) ([]*domain.Rental, error)

	// UpdateRental modifies a rental's period, price, or status. Date
	// changes are re-validated against availability; status changes must
	// follow the rental state machine.
	UpdateRental(ctx context.Context, id uuid.UUID, params UpdateRentalParams) (*domain.Rental, error)

	// CancelRental moves a pending or confirmed rental to cancelled.
	// The rental record is retained.
	CancelRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error)

	// CompleteRental moves a confirmed rental to completed.
	CompleteRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
}

// rentalServiceImpl implements the RentalService interface.
type rentalServiceImpl struct {
	db          *sql.DB
	rentalStore store.RentalStore
	carStore    store.CarStore
	logger      *slog.Logger
}

// NewRentalService creates a new RentalService.
// It returns an error if any of the required dependencies are nil.
func NewRentalService(
	db *sql.DB,
	rentalStore store.RentalStore,
	carStore store.CarStore,
	logger *slog.Logger,
) (RentalService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if rentalStore == nil {
		return nil, domain.NewValidationError("rentalStore", "cannot be nil", domain.ErrValidation)
	}
	if carStore == nil {
		return nil, domain.NewValidationError("carStore", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &rentalServiceImpl{
		db:          db,
		rentalStore: rentalStore,
		carStore:    carStore,
		logger:      logger.With(slog.String("component", "rental_service")),
	}, nil
}

// CreateRental implements RentalService.CreateRental
// The availability check and the insert run in one transaction with the
// car row locked, so two concurrent bookings for the same car serialize
// and the loser sees the winner's rental.
func (s *rentalServiceImpl) CreateRental(
	ctx context.Context,
	params CreateRentalParams,
) (*domain.Rental, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if params.IdempotencyKey != "" {
		existing, err := s.rentalStore.GetByIdempotencyKey(ctx, params.IdempotencyKey)
		if err == nil {
			log.Info("rental creation replayed via idempotency key",
				slog.String("rental_id", existing.ID.String()))
			return existing, nil
		}
		if !store.IsNotFoundError(err) {
			return nil, NewRentalServiceError("create_rental", "failed idempotency lookup", err)
		}
	}

	var rental *domain.Rental
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCars := s.carStore.WithTx(tx)
		txRentals := s.rentalStore.WithTx(tx)

		// Lock the car row first so concurrent bookings for the same car
		// cannot interleave between the overlap check and the insert.
		car, err := txCars.GetByIDForUpdate(ctx, params.CarID)
		if err != nil {
			return err
		}

		overlapping, err := txRentals.FindOverlapping(
			ctx, params.CarID, params.StartDate, params.EndDate, nil)
		if err != nil {
			return NewRentalServiceError("create_rental", "failed availability check", err)
		}
		if len(overlapping) > 0 {
			log.Info("booking rejected: period overlaps existing rental",
				slog.String("car_id", params.CarID.String()),
				slog.Int("conflicts", len(overlapping)))
			return ErrCarUnavailable
		}

		totalPrice := domain.RentalPrice(car.PricePerDay, params.StartDate, params.EndDate)
		if params.TotalPrice != nil {
			totalPrice = *params.TotalPrice
		}

		rental, err = domain.NewRental(
			params.UserID, params.CarID, params.StartDate, params.EndDate, totalPrice)
		if err != nil {
			return err
		}
		rental.IdempotencyKey = params.IdempotencyKey

		return txRentals.Create(ctx, rental)
	})

	if err != nil {
		// A concurrent request with the same key may have won the race.
		if errors.Is(err, store.ErrIdempotencyKeyExists) && params.IdempotencyKey != "" {
			return s.rentalStore.GetByIdempotencyKey(ctx, params.IdempotencyKey)
		}
		return nil, err
	}

	log.Info("rental created",
		slog.String("rental_id", rental.ID.String()),
		slog.String("car_id", rental.CarID.String()),
		slog.String("user_id", rental.UserID.String()))
	return rental, nil
}

// GetRental implements RentalService.GetRental
func (s *rentalServiceImpl) GetRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rental, err := s.rentalStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrRentalNotFound
		}
		log.Error("failed to retrieve rental",
			slog.String("error", err.Error()),
			slog.String("rental_id", id.String()))
		return nil, NewRentalServiceError("get_rental", "failed to retrieve rental", err)
	}

	return rental, nil
}

// ListRentals implements RentalService.ListRentals
func (s *rentalServiceImpl) ListRentals(
	ctx context.Context,
	filter store.RentalFilter,
	limit, offset int,
) ([]*domain.Rental, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rentals, err := s.rentalStore.List(ctx, filter, limit, offset)
	if err != nil {
		log.Error("failed to list rentals", slog.String("error", err.Error()))
		return nil, NewRentalServiceError("list_rentals", "failed to list rentals", err)
	}

	return rentals, nil
}

// UpdateRental implements RentalService.UpdateRental
func (s *rentalServiceImpl) UpdateRental(
	ctx context.Context,
	id uuid.UUID,
	params UpdateRentalParams,
) (*domain.Rental, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rental *domain.Rental
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txRentals := s.rentalStore.WithTx(tx)
		txCars := s.carStore.WithTx(tx)

		var err error
		rental, err = txRentals.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if rental.Status.IsTerminal() {
			log.Info("rental update rejected: terminal status",
				slog.String("rental_id", id.String()),
				slog.String("status", string(rental.Status)))
			return domain.ErrInvalidStateTransition
		}

		datesChanged := false
		if params.CarID != nil && *params.CarID != rental.CarID {
			rental.CarID = *params.CarID
			datesChanged = true
		}
		if params.StartDate != nil {
			rental.StartDate = *params.StartDate
			datesChanged = true
		}
		if params.EndDate != nil {
			rental.EndDate = *params.EndDate
			datesChanged = true
		}
		if params.TotalPrice != nil {
			rental.TotalPrice = *params.TotalPrice
		}
		if params.Status != nil {
			if !rental.Status.CanTransitionTo(*params.Status) {
				log.Info("rental update rejected: invalid transition",
					slog.String("rental_id", id.String()),
					slog.String("from", string(rental.Status)),
					slog.String("to", string(*params.Status)))
				return domain.ErrInvalidStateTransition
			}
			rental.Status = *params.Status
		}

		if datesChanged {
			if err := rental.Validate(); err != nil {
				return err
			}

			// Lock the car row before re-checking availability, same as
			// during creation.
			if _, err := txCars.GetByIDForUpdate(ctx, rental.CarID); err != nil {
				return err
			}

			overlapping, err := txRentals.FindOverlapping(
				ctx, rental.CarID, rental.StartDate, rental.EndDate, &rental.ID)
			if err != nil {
				return NewRentalServiceError("update_rental", "failed availability check", err)
			}
			if len(overlapping) > 0 {
				log.Info("rental update rejected: period overlaps existing rental",
					slog.String("rental_id", id.String()),
					slog.Int("conflicts", len(overlapping)))
				return ErrCarUnavailable
			}
		}

		return txRentals.Update(ctx, rental)
	})

	if err != nil {
		return nil, err
	}

	log.Info("rental updated",
		slog.String("rental_id", id.String()),
		slog.String("status", string(rental.Status)))
	return rental, nil
}

// CancelRental implements RentalService.CancelRental
func (s *rentalServiceImpl) CancelRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	return s.transition(ctx, id, domain.RentalStatusCancelled, "cancel_rental")
}

// CompleteRental implements RentalService.CompleteRental
func (s *rentalServiceImpl) CompleteRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	return s.transition(ctx, id, domain.RentalStatusCompleted, "complete_rental")
}

// transition moves a rental to the target status inside a transaction
// with the rental row locked.
func (s *rentalServiceImpl) transition(
	ctx context.Context,
	id uuid.UUID,
	target domain.RentalStatus,
	operation string,
) (*domain.Rental, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rental *domain.Rental
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txRentals := s.rentalStore.WithTx(tx)

		var err error
		rental, err = txRentals.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if !rental.Status.CanTransitionTo(target) {
			log.Info("rental transition rejected",
				slog.String("rental_id", id.String()),
				slog.String("from", string(rental.Status)),
				slog.String("to", string(target)))
			return domain.ErrInvalidStateTransition
		}

		rental.Status = target
		return txRentals.Update(ctx, rental)
	})

	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrRentalNotFound
		}
		if errors.Is(err, domain.ErrInvalidStateTransition) {
			return nil, err
		}
		return nil, NewRentalServiceError(operation, "failed to update rental status", err)
	}

	log.Info("rental status changed",
		slog.String("rental_id", id.String()),
		slog.String("status", string(target)))
	return rental, nil
}
