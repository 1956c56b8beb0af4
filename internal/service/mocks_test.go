package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/store"
)

// MockUserStore mocks the store.UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// MockCarStore mocks the store.CarStore interface
type MockCarStore struct {
	mock.Mock
}

func (m *MockCarStore) Create(ctx context.Context, car *domain.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}

func (m *MockCarStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarStore) List(
	ctx context.Context,
	filter store.CarFilter,
	limit, offset int,
) ([]*domain.Car, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*domain.Car), args.Error(1)
}

func (m *MockCarStore) Update(ctx context.Context, car *domain.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}

func (m *MockCarStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCarStore) WithTx(tx *sql.Tx) store.CarStore {
	return m
}

// MockRentalStore mocks the store.RentalStore interface
type MockRentalStore struct {
	mock.Mock
}

func (m *MockRentalStore) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}

func (m *MockRentalStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Rental, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalStore) FindOverlapping(
	ctx context.Context,
	carID uuid.UUID,
	start, end time.Time,
	excludeID *uuid.UUID,
) ([]*domain.Rental, error) {
	args := m.Called(ctx, carID, start, end, excludeID)
	return args.Get(0).([]*domain.Rental), args.Error(1)
}

func (m *MockRentalStore) List(
	ctx context.Context,
	filter store.RentalFilter,
	limit, offset int,
) ([]*domain.Rental, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*domain.Rental), args.Error(1)
}

func (m *MockRentalStore) Update(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}

func (m *MockRentalStore) CountActiveByCar(ctx context.Context, carID uuid.UUID) (int, error) {
	args := m.Called(ctx, carID)
	return args.Int(0), args.Error(1)
}

func (m *MockRentalStore) WithTx(tx *sql.Tx) store.RentalStore {
	return m
}

// MockPaymentStore mocks the store.PaymentStore interface
type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentStore) GetActiveByRental(ctx context.Context, rentalID uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentStore) List(
	ctx context.Context,
	filter store.PaymentFilter,
	limit, offset int,
) ([]*domain.Payment, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentStore) Update(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentStore) WithTx(tx *sql.Tx) store.PaymentStore {
	return m
}

// MockPasswordHasher mocks the auth.PasswordHasher interface
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// MockPasswordVerifier mocks the auth.PasswordVerifier interface
type MockPasswordVerifier struct {
	mock.Mock
}

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	args := m.Called(hashedPassword, password)
	return args.Error(0)
}
