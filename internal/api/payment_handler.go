package api

import (
	"log/slog"
	"net/http"

	"github.com/motorent/backend/internal/api/shared"
	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/service"
	"github.com/motorent/backend/internal/store"
)

// PaymentHandler handles payment lifecycle requests.
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler with the given service.
func NewPaymentHandler(paymentService service.PaymentService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger.With(slog.String("component", "payment_handler")),
	}
}

// CreatePayment handles requests to record a payment attempt for a
// rental. The amount must match the rental's total price and a rental
// can hold at most one non-failed payment.
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, requestValidationError(err), "")
		return
	}

	payment, err := h.paymentService.CreatePayment(r.Context(), service.CreatePaymentParams{
		RentalID:      req.RentalID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		PaymentDate:   req.PaymentDate,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, payment)
}

// GetPayment handles requests for a single payment by ID.
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	payment, err := h.paymentService.GetPayment(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, payment)
}

// ListPayments handles paginated payment listing requests. Results can
// be narrowed with the rental_id query parameter.
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var filter store.PaymentFilter
	var err error
	if filter.RentalID, err = getQueryUUID(r, "rental_id"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, limit, offset := getPagination(r)

	payments, err := h.paymentService.ListPayments(r.Context(), filter, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse{Data: payments, Page: page, Size: limit})
}

// UpdatePayment handles payment updates. Moving a payment to succeeded
// settles it and confirms the rental atomically; moving it to failed
// frees the rental for another payment attempt.
func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdatePaymentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, requestValidationError(err), "")
		return
	}

	params := service.UpdatePaymentParams{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	}
	if req.Status != nil {
		status := domain.PaymentStatus(*req.Status)
		params.Status = &status
	}

	payment, err := h.paymentService.UpdatePayment(r.Context(), id, params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, payment)
}

// DeletePayment handles requests to remove a pending payment.
func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.paymentService.DeletePayment(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
