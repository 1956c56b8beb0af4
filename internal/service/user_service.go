package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/platform/logger"
	"github.com/motorent/backend/internal/service/auth"
	"github.com/motorent/backend/internal/store"
)

// UserServiceError is a custom error type for user service errors.
type UserServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for UserServiceError.
func (e *UserServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("user service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("user service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *UserServiceError) Unwrap() error {
	return e.Err
}

// NewUserServiceError creates a new UserServiceError.
func NewUserServiceError(operation, message string, err error) *UserServiceError {
	return &UserServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// UserService provides user account operations.
type UserService interface {
	// Register creates a new user account with a hashed password.
	// Returns store.ErrEmailExists if the email is already registered.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)

	// Authenticate verifies the credentials and returns the matching user.
	// Returns auth.ErrInvalidCredentials when the email is unknown or the
	// password does not match; callers cannot tell the two apart.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// ListUsers retrieves users, newest first.
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error)

	// UpdateUser modifies a user's name, email, and optionally password.
	// An empty password leaves the stored hash untouched.
	UpdateUser(ctx context.Context, id uuid.UUID, name, email, password string) (*domain.User, error)

	// DeleteUser removes a user account.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (UserService, error) {
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		verifier:  verifier,
		logger:    logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email, password)
	if err != nil {
		log.Warn("user registration rejected", slog.String("error", err.Error()))
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewUserServiceError("register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, err
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return nil, NewUserServiceError("register", "failed to save user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("authentication failed: unknown email")
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to look up user by email", slog.String("error", err.Error()))
		return nil, NewUserServiceError("authenticate", "failed to look up user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("authentication failed: password mismatch",
			slog.String("user_id", user.ID.String()))
		return nil, auth.ErrInvalidCredentials
	}

	log.Info("user authenticated", slog.String("user_id", user.ID.String()))
	return user, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to retrieve user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, NewUserServiceError("get_user", "failed to retrieve user", err)
	}

	return user, nil
}

// ListUsers implements UserService.ListUsers
func (s *userServiceImpl) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	users, err := s.userStore.List(ctx, limit, offset)
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, NewUserServiceError("list_users", "failed to list users", err)
	}

	return users, nil
}

// UpdateUser implements UserService.UpdateUser
func (s *userServiceImpl) UpdateUser(
	ctx context.Context,
	id uuid.UUID,
	name, email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if password != "" {
		hashed, err := s.hasher.Hash(password)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			return nil, NewUserServiceError("update_user", "failed to hash password", err)
		}
		user.HashedPassword = hashed
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) || store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, NewUserServiceError("update_user", "failed to save user", err)
	}

	log.Info("user updated", slog.String("user_id", id.String()))
	return user, nil
}

// DeleteUser implements UserService.DeleteUser
func (s *userServiceImpl) DeleteUser(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.userStore.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return store.ErrUserNotFound
		}
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return NewUserServiceError("delete_user", "failed to delete user", err)
	}

	log.Info("user deleted", slog.String("user_id", id.String()))
	return nil
}
