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

func newPaymentService(t *testing.T) (PaymentService, sqlmock.Sqlmock, *MockPaymentStore, *MockRentalStore) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	paymentStore := new(MockPaymentStore)
	rentalStore := new(MockRentalStore)

	svc, err := NewPaymentService(db, paymentStore, rentalStore, nil)
	require.NoError(t, err)
	return svc, dbMock, paymentStore, rentalStore
}

func testRental(status domain.RentalStatus) *domain.Rental {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Rental{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		CarID:      uuid.New(),
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 3),
		TotalPrice: 1050000,
		Status:     status,
	}
}

func TestPaymentService_CreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, dbMock, paymentStore, rentalStore := newPaymentService(t)

		rental := testRental(domain.RentalStatusPending)
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		paymentStore.On("GetActiveByRental", mock.Anything, rental.ID).
			Return(nil, store.ErrPaymentNotFound)
		paymentStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)
		dbMock.ExpectCommit()

		payment, err := svc.CreatePayment(ctx, CreatePaymentParams{
			RentalID:      rental.ID,
			Amount:        rental.TotalPrice,
			PaymentMethod: "credit_card",
			PaymentDate:   time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPending, payment.Status)
		assert.Equal(t, rental.ID, payment.RentalID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("AmountMismatch", func(t *testing.T) {
		svc, dbMock, paymentStore, rentalStore := newPaymentService(t)

		rental := testRental(domain.RentalStatusPending)
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		dbMock.ExpectRollback()

		_, err := svc.CreatePayment(ctx, CreatePaymentParams{
			RentalID:      rental.ID,
			Amount:        rental.TotalPrice - 1,
			PaymentMethod: "credit_card",
			PaymentDate:   time.Now().UTC(),
		})
		assert.ErrorIs(t, err, ErrPaymentAmountMismatch)
		paymentStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("DuplicateActivePayment", func(t *testing.T) {
		svc, dbMock, paymentStore, rentalStore := newPaymentService(t)

		rental := testRental(domain.RentalStatusPending)
		active := &domain.Payment{
			ID:       uuid.New(),
			RentalID: rental.ID,
			Status:   domain.PaymentStatusPending,
		}
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		paymentStore.On("GetActiveByRental", mock.Anything, rental.ID).Return(active, nil)
		dbMock.ExpectRollback()

		_, err := svc.CreatePayment(ctx, CreatePaymentParams{
			RentalID:      rental.ID,
			Amount:        rental.TotalPrice,
			PaymentMethod: "credit_card",
			PaymentDate:   time.Now().UTC(),
		})
		assert.ErrorIs(t, err, ErrDuplicatePayment)
	})

	t.Run("RetryAfterFailedPayment", func(t *testing.T) {
		svc, dbMock, paymentStore, rentalStore := newPaymentService(t)

		rental := testRental(domain.RentalStatusPending)
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		// Failed payments do not block a new attempt.
		paymentStore.On("GetActiveByRental", mock.Anything, rental.ID).
			Return(nil, store.ErrPaymentNotFound)
		paymentStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)
		dbMock.ExpectCommit()

		payment, err := svc.CreatePayment(ctx, CreatePaymentParams{
			RentalID:      rental.ID,
			Amount:        rental.TotalPrice,
			PaymentMethod: "bank_transfer",
			PaymentDate:   time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	})

	t.Run("TerminalRentalRejected", func(t *testing.T) {
		svc, dbMock, _, rentalStore := newPaymentService(t)

		rental := testRental(domain.RentalStatusCancelled)
		dbMock.ExpectBegin()
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		dbMock.ExpectRollback()

		_, err := svc.CreatePayment(ctx, CreatePaymentParams{
			RentalID:      rental.ID,
			Amount:        rental.TotalPrice,
			PaymentMethod: "cash",
			PaymentDate:   time.Now().UTC(),
		})
		assert.ErrorIs(t, err, ErrRentalNotPayable)
	})
}

func TestPaymentService_UpdatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("SettleSucceededConfirmsRental", func(t *testing.T) {
		svc, dbMock, paymentStore, rentalStore := newPaymentService(t)

		rental := testRental(domain.RentalStatusPending)
		payment := &domain.Payment{
			ID:            uuid.New(),
			RentalID:      rental.ID,
			Amount:        rental.TotalPrice,
			PaymentMethod: "credit_card",
			Status:        domain.PaymentStatusPending,
		}

		dbMock.ExpectBegin()
		paymentStore.On("GetByIDForUpdate", mock.Anything, payment.ID).Return(payment, nil)
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		rentalStore.On("Update", mock.Anything, rental).Return(nil)
		paymentStore.On("Update", mock.Anything, payment).Return(nil)
		dbMock.ExpectCommit()

		succeeded := domain.PaymentStatusSucceeded
		updated, err := svc.UpdatePayment(ctx, payment.ID, UpdatePaymentParams{Status: &succeeded})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusSucceeded, updated.Status)
		assert.Equal(t, domain.RentalStatusConfirmed, rental.Status)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("SettleFailedLeavesRental", func(t *testing.T) {
		svc, dbMock, paymentStore, rentalStore := newPaymentService(t)

		rental := testRental(domain.RentalStatusPending)
		payment := &domain.Payment{
			ID:            uuid.New(),
			RentalID:      rental.ID,
			Amount:        rental.TotalPrice,
			PaymentMethod: "credit_card",
			Status:        domain.PaymentStatusPending,
		}

		dbMock.ExpectBegin()
		paymentStore.On("GetByIDForUpdate", mock.Anything, payment.ID).Return(payment, nil)
		rentalStore.On("GetByIDForUpdate", mock.Anything, rental.ID).Return(rental, nil)
		paymentStore.On("Update", mock.Anything, payment).Return(nil)
		dbMock.ExpectCommit()

		failed := domain.PaymentStatusFailed
		updated, err := svc.UpdatePayment(ctx, payment.ID, UpdatePaymentParams{Status: &failed})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusFailed, updated.Status)
		assert.Equal(t, domain.RentalStatusPending, rental.Status)
		rentalStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("SettledPaymentRejected", func(t *testing.T) {
		svc, dbMock, paymentStore, _ := newPaymentService(t)

		payment := &domain.Payment{
			ID:       uuid.New(),
			RentalID: uuid.New(),
			Status:   domain.PaymentStatusSucceeded,
		}

		dbMock.ExpectBegin()
		paymentStore.On("GetByIDForUpdate", mock.Anything, payment.ID).Return(payment, nil)
		dbMock.ExpectRollback()

		failed := domain.PaymentStatusFailed
		_, err := svc.UpdatePayment(ctx, payment.ID, UpdatePaymentParams{Status: &failed})
		assert.ErrorIs(t, err, ErrPaymentSettled)
	})
}

func TestPaymentService_DeletePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("DeletesPending", func(t *testing.T) {
		svc, dbMock, paymentStore, _ := newPaymentService(t)

		payment := &domain.Payment{
			ID:       uuid.New(),
			RentalID: uuid.New(),
			Status:   domain.PaymentStatusPending,
		}
		dbMock.ExpectBegin()
		paymentStore.On("GetByIDForUpdate", mock.Anything, payment.ID).Return(payment, nil)
		paymentStore.On("Delete", mock.Anything, payment.ID).Return(nil)
		dbMock.ExpectCommit()

		assert.NoError(t, svc.DeletePayment(ctx, payment.ID))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	// The status check and the delete share one transaction with the row
	// locked, so a payment settled by a concurrent request is never erased.
	t.Run("SettledRejected", func(t *testing.T) {
		svc, dbMock, paymentStore, _ := newPaymentService(t)

		payment := &domain.Payment{
			ID:       uuid.New(),
			RentalID: uuid.New(),
			Status:   domain.PaymentStatusSucceeded,
		}
		dbMock.ExpectBegin()
		paymentStore.On("GetByIDForUpdate", mock.Anything, payment.ID).Return(payment, nil)
		dbMock.ExpectRollback()

		err := svc.DeletePayment(ctx, payment.ID)
		assert.ErrorIs(t, err, ErrPaymentSettled)
		paymentStore.AssertNotCalled(t, "Delete", mock.Anything, payment.ID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, dbMock, paymentStore, _ := newPaymentService(t)

		id := uuid.New()
		dbMock.ExpectBegin()
		paymentStore.On("GetByIDForUpdate", mock.Anything, id).Return(nil, store.ErrPaymentNotFound)
		dbMock.ExpectRollback()

		assert.ErrorIs(t, svc.DeletePayment(ctx, id), store.ErrPaymentNotFound)
	})
}
