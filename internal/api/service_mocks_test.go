package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/service"
	"github.com/motorent/backend/internal/service/auth"
	"github.com/motorent/backend/internal/store"
)

// Function-field mocks for the service interfaces. Tests set only the
// functions their handler under test calls.

type mockUserService struct {
	registerFn     func(ctx context.Context, name, email, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	getUserFn      func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	listUsersFn    func(ctx context.Context, limit, offset int) ([]*domain.User, error)
	updateUserFn   func(ctx context.Context, id uuid.UUID, name, email, password string) (*domain.User, error)
	deleteUserFn   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserService) Register(
	ctx context.Context,
	name, email, password string,
) (*domain.User, error) {
	return m.registerFn(ctx, name, email, password)
}

func (m *mockUserService) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	return m.authenticateFn(ctx, email, password)
}

func (m *mockUserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getUserFn(ctx, id)
}

func (m *mockUserService) ListUsers(
	ctx context.Context,
	limit, offset int,
) ([]*domain.User, error) {
	return m.listUsersFn(ctx, limit, offset)
}

func (m *mockUserService) UpdateUser(
	ctx context.Context,
	id uuid.UUID,
	name, email, password string,
) (*domain.User, error) {
	return m.updateUserFn(ctx, id, name, email, password)
}

func (m *mockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.deleteUserFn(ctx, id)
}

type mockCarService struct {
	createCarFn func(ctx context.Context, params service.CarParams) (*domain.Car, error)
	getCarFn    func(ctx context.Context, id uuid.UUID) (*domain.Car, error)
	listCarsFn  func(ctx context.Context, filter store.CarFilter, limit, offset int) ([]*domain.Car, error)
	updateCarFn func(ctx context.Context, id uuid.UUID, params service.CarParams) (*domain.Car, error)
	deleteCarFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCarService) CreateCar(
	ctx context.Context,
	params service.CarParams,
) (*domain.Car, error) {
	return m.createCarFn(ctx, params)
}

func (m *mockCarService) GetCar(ctx context.Context, id uuid.UUID) (*domain.Car, error) {
	return m.getCarFn(ctx, id)
}

func (m *mockCarService) ListCars(
	ctx context.Context,
	filter store.CarFilter,
	limit, offset int,
) ([]*domain.Car, error) {
	return m.listCarsFn(ctx, filter, limit, offset)
}

func (m *mockCarService) UpdateCar(
	ctx context.Context,
	id uuid.UUID,
	params service.CarParams,
) (*domain.Car, error) {
	return m.updateCarFn(ctx, id, params)
}

func (m *mockCarService) DeleteCar(ctx context.Context, id uuid.UUID) error {
	return m.deleteCarFn(ctx, id)
}

type mockRentalService struct {
	createRentalFn   func(ctx context.Context, params service.CreateRentalParams) (*domain.Rental, error)
	getRentalFn      func(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
	listRentalsFn    func(ctx context.Context, filter store.RentalFilter, limit, offset int) ([]*domain.Rental, error)
	updateRentalFn   func(ctx context.Context, id uuid.UUID, params service.UpdateRentalParams) (*domain.Rental, error)
	cancelRentalFn   func(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
	completeRentalFn func(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
}

func (m *mockRentalService) CreateRental(
	ctx context.Context,
	params service.CreateRentalParams,
) (*domain.Rental, error) {
	return m.createRentalFn(ctx, params)
}

func (m *mockRentalService) GetRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	return m.getRentalFn(ctx, id)
}

func (m *mockRentalService) ListRentals(
	ctx context.Context,
	filter store.RentalFilter,
	limit, offset int,
) ([]*domain.Rental, error) {
	return m.listRentalsFn(ctx, filter, limit, offset)
}

func (m *mockRentalService) UpdateRental(
	ctx context.Context,
	id uuid.UUID,
	params service.UpdateRentalParams,
) (*domain.Rental, error) {
	return m.updateRentalFn(ctx, id, params)
}

func (m *mockRentalService) CancelRental(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Rental, error) {
	return m.cancelRentalFn(ctx, id)
}

func (m *mockRentalService) CompleteRental(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Rental, error) {
	return m.completeRentalFn(ctx, id)
}

type mockPaymentService struct {
	createPaymentFn func(ctx context.Context, params service.CreatePaymentParams) (*domain.Payment, error)
	getPaymentFn    func(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	listPaymentsFn  func(ctx context.Context, filter store.PaymentFilter, limit, offset int) ([]*domain.Payment, error)
	updatePaymentFn func(ctx context.Context, id uuid.UUID, params service.UpdatePaymentParams) (*domain.Payment, error)
	deletePaymentFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPaymentService) CreatePayment(
	ctx context.Context,
	params service.CreatePaymentParams,
) (*domain.Payment, error) {
	return m.createPaymentFn(ctx, params)
}

func (m *mockPaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return m.getPaymentFn(ctx, id)
}

func (m *mockPaymentService) ListPayments(
	ctx context.Context,
	filter store.PaymentFilter,
	limit, offset int,
) ([]*domain.Payment, error) {
	return m.listPaymentsFn(ctx, filter, limit, offset)
}

func (m *mockPaymentService) UpdatePayment(
	ctx context.Context,
	id uuid.UUID,
	params service.UpdatePaymentParams,
) (*domain.Payment, error) {
	return m.updatePaymentFn(ctx, id, params)
}

func (m *mockPaymentService) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return m.deletePaymentFn(ctx, id)
}

type mockJWTService struct {
	generateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	validateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	generateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	validateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.generateTokenFn != nil {
		return m.generateTokenFn(ctx, userID)
	}
	return "access-token", nil
}

func (m *mockJWTService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	return m.validateTokenFn(ctx, tokenString)
}

func (m *mockJWTService) GenerateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
) (string, error) {
	if m.generateRefreshTokenFn != nil {
		return m.generateRefreshTokenFn(ctx, userID)
	}
	return "refresh-token", nil
}

func (m *mockJWTService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	return m.validateRefreshTokenFn(ctx, tokenString)
}
