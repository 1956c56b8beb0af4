package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/motorent/backend/internal/api/middleware"
	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/service/auth"
)

// defaultPageSize is the number of items returned per list page.
const defaultPageSize = 10

// getUserIDFromContext extracts the authenticated user ID placed in the
// request context by the auth middleware.
// Returns auth.ErrUnauthorized equivalent via ErrMissingToken when absent.
func getUserIDFromContext(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		return uuid.Nil, auth.ErrMissingToken
	}
	return userID, nil
}

// getPathUUID parses the named chi URL parameter as a UUID.
// Returns domain.ErrInvalidID when the value is missing or malformed.
func getPathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, name)
	}
	return id, nil
}

// getQueryUUID parses an optional UUID query parameter. A missing or
// empty parameter yields nil without error.
func getQueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, name)
	}
	return &id, nil
}

// getPagination reads the page query parameter and converts it to a
// limit/offset pair. Pages are 1-based; absent or invalid values fall
// back to the first page.
func getPagination(r *http.Request) (page, limit, offset int) {
	page = 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page, defaultPageSize, (page - 1) * defaultPageSize
}
