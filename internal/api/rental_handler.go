package api

import (
	"log/slog"
	"net/http"

	"github.com/motorent/backend/internal/api/shared"
	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/platform/logger"
	"github.com/motorent/backend/internal/service"
	"github.com/motorent/backend/internal/store"
)

// idempotencyKeyHeader carries the client-chosen key that makes booking
// requests safe to retry.
const idempotencyKeyHeader = "Idempotency-Key"

// RentalHandler handles booking lifecycle requests.
type RentalHandler struct {
	rentalService service.RentalService
	logger        *slog.Logger
}

// NewRentalHandler creates a new RentalHandler with the given service.
func NewRentalHandler(rentalService service.RentalService, logger *slog.Logger) *RentalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RentalHandler{
		rentalService: rentalService,
		logger:        logger.With(slog.String("component", "rental_handler")),
	}
}

// CreateRental handles booking requests. The renter is the
// authenticated user; an optional Idempotency-Key header makes retries
// return the original booking instead of a conflict.
func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CreateRentalRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, requestValidationError(err), "")
		return
	}

	rental, err := h.rentalService.CreateRental(r.Context(), service.CreateRentalParams{
		UserID:         userID,
		CarID:          req.CarID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		TotalPrice:     req.TotalPrice,
		IdempotencyKey: r.Header.Get(idempotencyKeyHeader),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("rental created",
		slog.String("rental_id", rental.ID.String()),
		slog.String("car_id", rental.CarID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, rental)
}

// GetRental handles requests for a single rental by ID.
func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	rental, err := h.rentalService.GetRental(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, rental)
}

// ListRentals handles paginated rental listing requests. Results can be
// narrowed with the user_id and car_id query parameters.
func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	var filter store.RentalFilter
	var err error
	if filter.UserID, err = getQueryUUID(r, "user_id"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.CarID, err = getQueryUUID(r, "car_id"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, limit, offset := getPagination(r)

	rentals, err := h.rentalService.ListRentals(r.Context(), filter, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse{Data: rentals, Page: page, Size: limit})
}

// UpdateRental handles partial updates of a rental. Date or car changes
// re-run the availability check before they are accepted.
func (h *RentalHandler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateRentalRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, requestValidationError(err), "")
		return
	}

	params := service.UpdateRentalParams{
		CarID:      req.CarID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		TotalPrice: req.TotalPrice,
	}
	if req.Status != nil {
		status := domain.RentalStatus(*req.Status)
		params.Status = &status
	}

	rental, err := h.rentalService.UpdateRental(r.Context(), id, params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, rental)
}

// CancelRental handles rental cancellation requests. Only pending and
// confirmed rentals can be cancelled.
func (h *RentalHandler) CancelRental(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if _, err := h.rentalService.CancelRental(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteRental handles requests to mark a confirmed rental as
// completed at the end of the rental period.
func (h *RentalHandler) CompleteRental(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	rental, err := h.rentalService.CompleteRental(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, rental)
}
