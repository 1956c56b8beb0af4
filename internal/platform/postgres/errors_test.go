package postgres_test

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/motorent/backend/internal/platform/postgres"
	"github.com/motorent/backend/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil error",
			err:  nil,
			want: nil,
		},
		{
			name: "no rows maps to not found",
			err:  sql.ErrNoRows,
			want: store.ErrNotFound,
		},
		{
			name: "unique violation maps to duplicate",
			err:  &pgconn.PgError{Code: "23505"},
			want: store.ErrDuplicate,
		},
		{
			name: "foreign key violation maps to invalid entity",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "rentals_car_id_fkey"},
			want: store.ErrInvalidEntity,
		},
		{
			name: "check violation maps to invalid entity",
			err:  &pgconn.PgError{Code: "23514", ConstraintName: "rentals_status_check"},
			want: store.ErrInvalidEntity,
		},
		{
			name: "bad connection maps to unavailable",
			err:  driver.ErrBadConn,
			want: store.ErrUnavailable,
		},
		{
			name: "connection exception class maps to unavailable",
			err:  &pgconn.PgError{Code: "08006"},
			want: store.ErrUnavailable,
		},
		{
			name: "admin shutdown maps to unavailable",
			err:  &pgconn.PgError{Code: "57P01"},
			want: store.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := postgres.MapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	original := errors.New("connection refused")
	got := postgres.MapError(original)
	assert.Equal(t, original, got)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, postgres.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, postgres.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, postgres.IsUniqueViolation(errors.New("other")))
	assert.False(t, postgres.IsUniqueViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, postgres.IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, postgres.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, postgres.IsForeignKeyViolation(nil))
}

func TestMapUniqueViolation(t *testing.T) {
	uniqueErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	t.Run("with specific error", func(t *testing.T) {
		got := postgres.MapUniqueViolation(uniqueErr, store.ErrEmailExists)
		assert.ErrorIs(t, got, store.ErrEmailExists)
	})

	t.Run("without specific error", func(t *testing.T) {
		got := postgres.MapUniqueViolation(uniqueErr, nil)
		assert.ErrorIs(t, got, store.ErrDuplicate)
	})

	t.Run("non unique violation passes through", func(t *testing.T) {
		original := errors.New("other failure")
		got := postgres.MapUniqueViolation(original, store.ErrEmailExists)
		assert.Equal(t, original, got)
	})
}
