package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/motorent/backend/internal/api/shared"
	"github.com/motorent/backend/internal/service"
	"github.com/motorent/backend/internal/store"
)

// CarHandler handles fleet management requests.
type CarHandler struct {
	carService service.CarService
	logger     *slog.Logger
}

// NewCarHandler creates a new CarHandler with the given service.
func NewCarHandler(carService service.CarService, logger *slog.Logger) *CarHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CarHandler{
		carService: carService,
		logger:     logger.With(slog.String("component", "car_handler")),
	}
}

// CreateCar handles requests to add a car to the fleet.
func (h *CarHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	var req CarRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, requestValidationError(err), "")
		return
	}

	car, err := h.carService.CreateCar(r.Context(), service.CarParams{
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		PricePerDay: req.PricePerDay,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, car)
}

// GetCar handles requests for a single car by ID.
func (h *CarHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	car, err := h.carService.GetCar(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, car)
}

// ListCars handles paginated car listing requests. Results can be
// narrowed with the brand and price_max query parameters.
func (h *CarHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	filter := store.CarFilter{Brand: r.URL.Query().Get("brand")}
	if raw := r.URL.Query().Get("price_max"); raw != "" {
		priceMax, err := strconv.ParseFloat(raw, 64)
		if err != nil || priceMax <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid price_max parameter")
			return
		}
		filter.PriceMax = priceMax
	}

	page, limit, offset := getPagination(r)

	cars, err := h.carService.ListCars(r.Context(), filter, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse{Data: cars, Page: page, Size: limit})
}

// UpdateCar handles requests to replace a car's attributes.
func (h *CarHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CarRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, requestValidationError(err), "")
		return
	}

	car, err := h.carService.UpdateCar(r.Context(), id, service.CarParams{
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		PricePerDay: req.PricePerDay,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, car)
}

// DeleteCar handles requests to remove a car from the fleet. Cars with
// pending or confirmed rentals cannot be removed.
func (h *CarHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.carService.DeleteCar(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
