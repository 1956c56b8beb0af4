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

// PaymentServiceError is a custom error type for payment service errors.
type PaymentServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for PaymentServiceError.
func (e *PaymentServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("payment service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PaymentServiceError) Unwrap() error {
	return e.Err
}

// NewPaymentServiceError creates a new PaymentServiceError.
func NewPaymentServiceError(operation, message string, err error) *PaymentServiceError {
	return &PaymentServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CreatePaymentParams carries the attributes of a new payment attempt.
type CreatePaymentParams struct {
	RentalID      uuid.UUID
	Amount        float64
	PaymentMethod string
	PaymentDate   time.Time
}

// UpdatePaymentParams carries the mutable attributes of a payment.
// Nil fields are left unchanged. Setting Status to succeeded settles the
// payment and confirms its rental atomically.
type UpdatePaymentParams struct {
	Amount        *float64
	PaymentMethod *string
	Status        *domain.PaymentStatus
}

// PaymentService provides payment lifecycle operations.
type PaymentService interface {
	// CreatePayment records a pending payment attempt for a rental.
	// Returns ErrDuplicatePayment if the rental already has a non-failed
	// payment, ErrPaymentAmountMismatch if the amount differs from the
	// rental's total price, and ErrRentalNotPayable if the rental is in a
	// terminal state.
	CreatePayment(ctx context.Context, params CreatePaymentParams) (*domain.Payment, error)

	// GetPayment retrieves a payment by ID.
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// ListPayments retrieves payments matching the filter in insertion order.
	ListPayments(ctx context.Context, filter store.PaymentFilter, limit, offset int) ([]*domain.Payment, error)

	// UpdatePayment modifies a pending payment. A status change to
	// succeeded also confirms the rental in the same transaction; a change
	// to failed frees the rental for another payment attempt.
	UpdatePayment(ctx context.Context, id uuid.UUID, params UpdatePaymentParams) (*domain.Payment, error)

	// DeletePayment removes a pending payment.
	// Returns ErrPaymentSettled for succeeded or failed payments.
	DeletePayment(ctx context.Context, id uuid.UUID) error
}

// paymentServiceImpl implements the PaymentService interface.
type paymentServiceImpl struct {
	db           *sql.DB
	paymentStore store.PaymentStore
	rentalStore  store.RentalStore
	logger       *slog.Logger
}

// NewPaymentService creates a new PaymentService.
// It returns an error if any of the required dependencies are nil.
func NewPaymentService(
	db *sql.DB,
	paymentStore store.PaymentStore,
	rentalStore store.RentalStore,
	logger *slog.Logger,
) (PaymentService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if paymentStore == nil {
		return nil, domain.NewValidationError("paymentStore", "cannot be nil", domain.ErrValidation)
	}
	if rentalStore == nil {
		return nil, domain.NewValidationError("rentalStore", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &paymentServiceImpl{
		db:           db,
		paymentStore: paymentStore,
		rentalStore:  rentalStore,
		logger:       logger.With(slog.String("component", "payment_service")),
	}, nil
}

// CreatePayment implements PaymentService.CreatePayment
// The rental row is locked while checking for an existing active payment
// so two concurrent attempts for the same rental serialize.
func (s *paymentServiceImpl) CreatePayment(
	ctx context.Context,
	params CreatePaymentParams,
) (*domain.Payment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var payment *domain.Payment
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txRentals := s.rentalStore.WithTx(tx)
		txPayments := s.paymentStore.WithTx(tx)

		rental, err := txRentals.GetByIDForUpdate(ctx, params.RentalID)
		if err != nil {
			return err
		}

		if rental.Status.IsTerminal() {
			log.Info("payment rejected: rental in terminal state",
				slog.String("rental_id", rental.ID.String()),
				slog.String("status", string(rental.Status)))
			return ErrRentalNotPayable
		}

		if params.Amount != rental.TotalPrice {
			log.Info("payment rejected: amount mismatch",
				slog.String("rental_id", rental.ID.String()),
				slog.Float64("amount", params.Amount),
				slog.Float64("total_price", rental.TotalPrice))
			return ErrPaymentAmountMismatch
		}

		_, err = txPayments.GetActiveByRental(ctx, rental.ID)
		if err == nil {
			log.Info("payment rejected: active payment exists",
				slog.String("rental_id", rental.ID.String()))
			return ErrDuplicatePayment
		}
		if !store.IsNotFoundError(err) {
			return NewPaymentServiceError("create_payment", "failed active payment check", err)
		}

		payment, err = domain.NewPayment(
			rental.ID, params.Amount, params.PaymentMethod, params.PaymentDate)
		if err != nil {
			return err
		}

		if err := txPayments.Create(ctx, payment); err != nil {
			// The partial unique index backs the check above under
			// concurrent inserts.
			if errors.Is(err, store.ErrDuplicate) {
				return ErrDuplicatePayment
			}
			return err
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	log.Info("payment created",
		slog.String("payment_id", payment.ID.String()),
		slog.String("rental_id", payment.RentalID.String()))
	return payment, nil
}

// GetPayment implements PaymentService.GetPayment
func (s *paymentServiceImpl) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payment, err := s.paymentStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrPaymentNotFound
		}
		log.Error("failed to retrieve payment",
			slog.String("error", err.Error()),
			slog.String("payment_id", id.String()))
		return nil, NewPaymentServiceError("get_payment", "failed to retrieve payment", err)
	}

	return payment, nil
}

// ListPayments implements PaymentService.ListPayments
func (s *paymentServiceImpl) ListPayments(
	ctx context.Context,
	filter store.PaymentFilter,
	limit, offset int,
) ([]*domain.Payment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payments, err := s.paymentStore.List(ctx, filter, limit, offset)
	if err != nil {
		log.Error("failed to list payments", slog.String("error", err.Error()))
		return nil, NewPaymentServiceError("list_payments", "failed to list payments", err)
	}

	return payments, nil
}

// UpdatePayment implements PaymentService.UpdatePayment
// Settlement is atomic: marking a payment succeeded and confirming its
// rental happen in one transaction with both rows locked, so no reader
// ever sees a succeeded payment next to a still-pending rental.
func (s *paymentServiceImpl) UpdatePayment(
	ctx context.Context,
	id uuid.UUID,
	params UpdatePaymentParams,
) (*domain.Payment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var payment *domain.Payment
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txPayments := s.paymentStore.WithTx(tx)
		txRentals := s.rentalStore.WithTx(tx)

		var err error
		payment, err = txPayments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if payment.Status.IsSettled() {
			log.Info("payment update rejected: already settled",
				slog.String("payment_id", id.String()),
				slog.String("status", string(payment.Status)))
			return ErrPaymentSettled
		}

		rental, err := txRentals.GetByIDForUpdate(ctx, payment.RentalID)
		if err != nil {
			return err
		}

		if params.Amount != nil {
			if *params.Amount != rental.TotalPrice {
				return ErrPaymentAmountMismatch
			}
			payment.Amount = *params.Amount
		}
		if params.PaymentMethod != nil {
			payment.PaymentMethod = *params.PaymentMethod
		}

		if params.Status != nil && *params.Status != payment.Status {
			if !params.Status.IsValid() {
				return domain.NewValidationError("status", "unknown payment status", domain.ErrValidation)
			}

			switch *params.Status {
			case domain.PaymentStatusSucceeded:
				if rental.Status.IsTerminal() {
					return ErrRentalNotPayable
				}
				payment.Status = domain.PaymentStatusSucceeded
				if rental.Status == domain.RentalStatusPending {
					rental.Status = domain.RentalStatusConfirmed
					if err := txRentals.Update(ctx, rental); err != nil {
						return err
					}
				}
			case domain.PaymentStatusFailed:
				payment.Status = domain.PaymentStatusFailed
			default:
				return domain.ErrInvalidStateTransition
			}
		}

		return txPayments.Update(ctx, payment)
	})

	if err != nil {
		return nil, err
	}

	log.Info("payment updated",
		slog.String("payment_id", id.String()),
		slog.String("status", string(payment.Status)))
	return payment, nil
}

// DeletePayment implements PaymentService.DeletePayment
// The payment row stays locked from the settled-status check through the
// delete, so a concurrent settlement cannot slip in between.
func (s *paymentServiceImpl) DeletePayment(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txPayments := s.paymentStore.WithTx(tx)

		payment, err := txPayments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if payment.Status.IsSettled() {
			log.Info("payment deletion rejected: already settled",
				slog.String("payment_id", id.String()),
				slog.String("status", string(payment.Status)))
			return ErrPaymentSettled
		}

		return txPayments.Delete(ctx, id)
	})

	if err != nil {
		if store.IsNotFoundError(err) {
			return store.ErrPaymentNotFound
		}
		if errors.Is(err, ErrPaymentSettled) {
			return err
		}
		log.Error("failed to delete payment",
			slog.String("error", err.Error()),
			slog.String("payment_id", id.String()))
		return NewPaymentServiceError("delete_payment", "failed to delete payment", err)
	}

	log.Info("payment deleted", slog.String("payment_id", id.String()))
	return nil
}
