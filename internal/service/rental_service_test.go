package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/store"
)

func newRentalService(t *testing.T) (RentalService, sqlmock.Sqlmock, *MockRentalStore, *MockCarStore) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rentalStore := new(MockRentalStore)
	carStore := new(MockCarStore)

	svc, err := NewRentalService(db, rentalStore, carStore, nil)
	require.NoError(t, err)
	return svc, dbMock, rentalStore, carStore
}

func testCar() *domain.Car {
	return &domain.Car{
		ID:          uuid.New(),
		Brand:       "Toyota",
		Model:       "Avanza",
		Year:        2022,
		PricePerDay: 350000,
	}
}

func TestRentalService_CreateRental(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	t.Run("Success", func(t *testing.T) {
		svc, dbMock, rentalStore, carStore := newRentalService(t)

		car := testCar()
		dbMock.ExpectBegin()
		carStore.On("GetByIDForUpdate", mock.Anything, car.ID).Return(car, nil)
		rentalStore.On("FindOverlapping", mock.Anything, car.ID, start, end, (*uuid.UUID)(nil)).
			Return([]*domain.Rental{}, nil)
		rentalStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Rental")).Return(nil)
		dbMock.ExpectCommit()

		rental, err := svc.CreateRental(ctx, CreateRentalParams{
			UserID:    uuid.New(),
			CarID:     car.ID,
			StartDate: start,
			EndDate:   end,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusPending, rental.Status)
		// Price defaults to the car's daily rate times the rental days.
		assert.Equal(t, 3*car.PricePerDay, rental.TotalPrice)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("ClientPriceOverride", func(t *testing.T) {
		svc, dbMock, rentalStore, carStore := newRentalService(t)

		car := testCar()
		dbMock.ExpectBegin()
		carStore.On("GetByIDForUpdate", mock.Anything, car.ID).Return(car, nil)
		rentalStore.On("FindOverlapping", mock.Anything, car.ID, start, end, (*uuid.UUID)(nil)).
			Return([]*domain.Rental{}, nil)
		rentalStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Rental")).Return(nil)
		dbMock.ExpectCommit()

		price := 999000.0
		rental, err := svc.CreateRental(ctx, CreateRentalParams{
			UserID:     uuid.New(),
			CarID:      car.ID,
			StartDate:  start,
			EndDate:    end,
			TotalPrice: &price,
		})
		require.NoError(t, err)
		assert.Equal(t, price, rental.TotalPrice)
	})

	t.Run("OverlapRejected", func(t *testing.T) {
		svc, dbMock, rentalStore, carStore := newRentalService(t)

		car := testCar()
		existing := &domain.Rental{
			ID:        uuid.New(),
			CarID:     car.ID,
			StartDate: start.AddDate(0, 0, -1),
			EndDate:   start.AddDate(0, 0, 1),
			Status:    domain.RentalStatusConfirmed,
		}

		dbMock.ExpectBegin()
		carStore.On("GetByIDForUpdate", mock.Anything, car.ID).Return(car, nil)
		rentalStore.On("FindOverlapping", mock.Anything, car.ID, start, end, (*uuid.UUID)(nil)).
			Return([]*domain.Rental{existing}, nil)
		dbMock.ExpectRollback()

		_, err := svc.CreateRental(ctx, CreateRentalParams{
			UserID:    uuid.New(),
			CarID:     car.ID,
			StartDate: start,
			EndDate:   end,
		})
		assert.ErrorIs(t, err, ErrCarUnavailable)
		rentalStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("CarNotFound", func(t *testing.T) {
		svc, dbMock, _, carStore := newRentalService(t)

		carID := uuid.New()
		dbMock.ExpectBegin()
		carStore.On("GetByIDForUpdate", mock.Anything, carID).
			Return(nil, store.ErrCarNotFound)
		dbMock.ExpectRollback()

		_, err := svc.CreateRental(ctx, CreateRentalParams{
			UserID:    uuid.New(),
			CarID:     carID,
			StartDate: start,
			EndDate:   end,
		})
		assert.ErrorIs(t, err, store.ErrCarNotFound)
	})

	t.Run("IdempotentReplay", func(t *testing.T) {
		svc, _, rentalStore, _ := newRentalService(t)

		existing := &domain.Rental{
			ID:             uuid.New(),
			Status:         domain.RentalStatusPending,
			IdempotencyKey: "req-7",
		}
		rentalStore.On("GetByIdempotencyKey", ctx, "req-7").Return(existing, nil)

		rental, err := svc.CreateRental(ctx, CreateRentalParams{
			UserID:         uuid.New(),
			CarID:          uuid.New(),
			StartDate:      start,
			EndDate:        end,
			IdempotencyKey: "req-7",
		})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, rental.ID)
		rentalStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("InvalidDateRange", func(t *testing.T) {
		svc, dbMock, rentalStore, carStore := newRentalService(t)

		car := testCar()
		dbMock.ExpectBegin()
		carStore.On("GetByIDForUpdate", mock.Anything, car.ID).Return(car, nil)
		rentalStore.On("FindOverlapping", mock.Anything, car.ID, start, start, (*uuid.UUID)(nil)).
			Return([]*domain.Rental{}, nil)
		dbMock.ExpectRollback()

		_, err := svc.CreateRental(ctx, CreateRentalParams{
			UserID:    uuid.New(),
			CarID:     car.ID,
			StartDate: start,
			EndDate:   start,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	})
}

func TestRentalService_UpdateRental(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("TerminalStatusRejected", func(t *testing.T) {
		svc, dbMock, rentalStore, _ := newRentalService(t)

		rental := &domain.Rental{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			CarID:     uuid.New(),
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 2),
			Status:    domain.RentalStatusCancelled,
		}
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		dbMock.ExpectRollback()

		newEnd := start.AddDate(0, 0, 5)
		_, err := svc.UpdateRental(ctx, rental.ID, UpdateRentalParams{EndDate: &newEnd})
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("DateChangeRevalidatesAvailability", func(t *testing.T) {
		svc, dbMock, rentalStore, carStore := newRentalService(t)

		car := testCar()
		rental := &domain.Rental{
			ID:         uuid.New(),
			UserID:     uuid.New(),
			CarID:      car.ID,
			StartDate:  start,
			EndDate:    start.AddDate(0, 0, 2),
			TotalPrice: 700000,
			Status:     domain.RentalStatusPending,
		}
		newEnd := start.AddDate(0, 0, 5)

		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		carStore.On("GetByIDForUpdate", mock.Anything, car.ID).Return(car, nil)
		rentalStore.On("FindOverlapping", mock.Anything, car.ID, start, newEnd, &rental.ID).
			Return([]*domain.Rental{}, nil)
		rentalStore.On("Update", mock.Anything, rental).Return(nil)
		dbMock.ExpectCommit()

		updated, err := svc.UpdateRental(ctx, rental.ID, UpdateRentalParams{EndDate: &newEnd})
		require.NoError(t, err)
		assert.Equal(t, newEnd, updated.EndDate)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("InvalidStatusTransition", func(t *testing.T) {
		svc, dbMock, rentalStore, _ := newRentalService(t)

		rental := &domain.Rental{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			CarID:     uuid.New(),
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 2),
			Status:    domain.RentalStatusPending,
		}
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		dbMock.ExpectRollback()

		completed := domain.RentalStatusCompleted
		_, err := svc.UpdateRental(ctx, rental.ID, UpdateRentalParams{Status: &completed})
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})
}

func TestRentalService_CancelRental(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("CancelsPending", func(t *testing.T) {
		svc, dbMock, rentalStore, _ := newRentalService(t)

		rental := &domain.Rental{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			CarID:     uuid.New(),
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 2),
			Status:    domain.RentalStatusPending,
		}
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		rentalStore.On("Update", mock.Anything, rental).Return(nil)
		dbMock.ExpectCommit()

		cancelled, err := svc.CancelRental(ctx, rental.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCancelled, cancelled.Status)
	})

	t.Run("CancelTwiceRejected", func(t *testing.T) {
		svc, dbMock, rentalStore, _ := newRentalService(t)

		rental := &domain.Rental{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			CarID:     uuid.New(),
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 2),
			Status:    domain.RentalStatusCancelled,
		}
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		dbMock.ExpectRollback()

		_, err := svc.CancelRental(ctx, rental.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})
}

func TestRentalService_CompleteRental(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("CompletesConfirmed", func(t *testing.T) {
		svc, dbMock, rentalStore, _ := newRentalService(t)

		rental := &domain.Rental{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			CarID:     uuid.New(),
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 2),
			Status:    domain.RentalStatusConfirmed,
		}
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		rentalStore.On("Update", mock.Anything, rental).Return(nil)
		dbMock.ExpectCommit()

		completed, err := svc.CompleteRental(ctx, rental.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCompleted, completed.Status)
	})

	t.Run("PendingCannotComplete", func(t *testing.T) {
		svc, dbMock, rentalStore, _ := newRentalService(t)

		rental := &domain.Rental{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			CarID:     uuid.New(),
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 2),
			Status:    domain.RentalStatusPending,
		}
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		dbMock.ExpectRollback()

		_, err := svc.CompleteRental(ctx, rental.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})
}
