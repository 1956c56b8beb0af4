package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/platform/logger"
	"github.com/motorent/backend/internal/store"
)

// CarServiceError is a custom error type for car service errors.
type CarServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CarServiceError.
func (e *CarServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("car service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("car service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CarServiceError) Unwrap() error {
	return e.Err
}

// NewCarServiceError creates a new CarServiceError.
func NewCarServiceError(operation, message string, err error) *CarServiceError {
	return &CarServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CarParams carries the mutable attributes of a car.
type CarParams struct {
	Brand       string
	Model       string
	Year        int
	PricePerDay float64
}

// CarService provides fleet management operations.
type CarService interface {
	// CreateCar adds a new car to the fleet.
	CreateCar(ctx context.Context, params CarParams) (*domain.Car, error)

	// GetCar retrieves a car by ID.
	GetCar(ctx context.Context, id uuid.UUID) (*domain.Car, error)

	// ListCars retrieves cars matching the filter, newest first.
	ListCars(ctx context.Context, filter store.CarFilter, limit, offset int) ([]*domain.Car, error)

	// UpdateCar modifies a car's attributes.
	UpdateCar(ctx context.Context, id uuid.UUID, params CarParams) (*domain.Car, error)

	// DeleteCar removes a car from the fleet.
	// Returns ErrCarHasActiveRentals while pending or confirmed rentals
	// reference the car.
	DeleteCar(ctx context.Context, id uuid.UUID) error
}

// carServiceImpl implements the CarService interface.
type carServiceImpl struct {
	carStore    store.CarStore
	rentalStore store.RentalStore
	logger      *slog.Logger
}

// NewCarService creates a new CarService.
// It returns an error if any of the required dependencies are nil.
func NewCarService(
	carStore store.CarStore,
	rentalStore store.RentalStore,
	logger *slog.Logger,
) (CarService, error) {
	if carStore == nil {
		return nil, domain.NewValidationError("carStore", "cannot be nil", domain.ErrValidation)
	}
	if rentalStore == nil {
		return nil, domain.NewValidationError("rentalStore", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &carServiceImpl{
		carStore:    carStore,
		rentalStore: rentalStore,
		logger:      logger.With(slog.String("component", "car_service")),
	}, nil
}

// CreateCar implements CarService.CreateCar
func (s *carServiceImpl) CreateCar(ctx context.Context, params CarParams) (*domain.Car, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	car, err := domain.NewCar(params.Brand, params.Model, params.Year, params.PricePerDay)
	if err != nil {
		log.Warn("car creation rejected", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.carStore.Create(ctx, car); err != nil {
		log.Error("failed to create car", slog.String("error", err.Error()))
		return nil, NewCarServiceError("create_car", "failed to save car", err)
	}

	return car, nil
}

// GetCar implements CarService.GetCar
func (s *carServiceImpl) GetCar(ctx context.Context, id uuid.UUID) (*domain.Car, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	car, err := s.carStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrCarNotFound
		}
		log.Error("failed to retrieve car",
			slog.String("error", err.Error()),
			slog.String("car_id", id.String()))
		return nil, NewCarServiceError("get_car", "failed to retrieve car", err)
	}

	return car, nil
}

// ListCars implements CarService.ListCars
func (s *carServiceImpl) ListCars(
	ctx context.Context,
	filter store.CarFilter,
	limit, offset int,
) ([]*domain.Car, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cars, err := s.carStore.List(ctx, filter, limit, offset)
	if err != nil {
		log.Error("failed to list cars", slog.String("error", err.Error()))
		return nil, NewCarServiceError("list_cars", "failed to list cars", err)
	}

	return cars, nil
}

// UpdateCar implements CarService.UpdateCar
func (s *carServiceImpl) UpdateCar(ctx context.Context, id uuid.UUID, params CarParams) (*domain.Car, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	car, err := s.GetCar(ctx, id)
	if err != nil {
		return nil, err
	}

	car.Brand = params.Brand
	car.Model = params.Model
	car.Year = params.Year
	car.PricePerDay = params.PricePerDay

	if err := s.carStore.Update(ctx, car); err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrCarNotFound
		}
		log.Error("failed to update car",
			slog.String("error", err.Error()),
			slog.String("car_id", id.String()))
		return nil, NewCarServiceError("update_car", "failed to save car", err)
	}

	log.Info("car updated", slog.String("car_id", id.String()))
	return car, nil
}

// DeleteCar implements CarService.DeleteCar
// Deletion is refused while the car has pending or confirmed rentals so
// that booked customers never lose their reservation.
func (s *carServiceImpl) DeleteCar(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	active, err := s.rentalStore.CountActiveByCar(ctx, id)
	if err != nil {
		log.Error("failed to count active rentals",
			slog.String("error", err.Error()),
			slog.String("car_id", id.String()))
		return NewCarServiceError("delete_car", "failed to check rentals", err)
	}
	if active > 0 {
		log.Warn("car deletion refused: active rentals exist",
			slog.String("car_id", id.String()),
			slog.Int("active_rentals", active))
		return ErrCarHasActiveRentals
	}

	if err := s.carStore.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return store.ErrCarNotFound
		}
		log.Error("failed to delete car",
			slog.String("error", err.Error()),
			slog.String("car_id", id.String()))
		return NewCarServiceError("delete_car", "failed to delete car", err)
	}

	log.Info("car deleted", slog.String("car_id", id.String()))
	return nil
}
