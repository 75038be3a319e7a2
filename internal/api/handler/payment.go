// internal/api/handler/payment.go
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fairsplit/internal/api/middleware"
	"fairsplit/internal/domain"
	"fairsplit/internal/service"
	"fairsplit/internal/util"
)

// PaymentHandler handles HTTP requests related to settle-up payments.
type PaymentHandler struct {
	responder
	service service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// CreatePaymentRequest represents the request body for a payment.
// The caller must be the debtor or the debtee.
type CreatePaymentRequest struct {
	Name     string           `json:"name"`
	Amount   *decimal.Decimal `json:"amount"`
	DebtorID string           `json:"debtor_id"`
	DebteeID string           `json:"debtee_id"`
	GroupID  *int64           `json:"group_id"`
}

// CreatePayment handles the payment creation request.
// POST /payments
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	const op = "create_payment"
	callerID, ok := middleware.CallerID(r.Context())
	if !ok {
		h.respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req CreatePaymentRequest
	if err := decodeJSON(r, &req); err != nil || req.Amount == nil {
		h.respondWithError(w, r, op, util.ErrInvalidInput, "user_id", callerID)
		return
	}
	if callerID != req.DebtorID && callerID != req.DebteeID {
		h.respondWithError(w, r, op, util.ErrForbidden, "user_id", callerID)
		return
	}

	payment, err := h.service.CreatePayment(r.Context(), service.PaymentRequest{
		Name:     req.Name,
		Amount:   *req.Amount,
		DebtorID: req.DebtorID,
		DebteeID: req.DebteeID,
		GroupID:  req.GroupID,
	})
	if err != nil {
		h.respondWithError(w, r, op, err, "debtor_id", req.DebtorID, "debtee_id", req.DebteeID)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, payment)
}

// GetPayment handles the get payment request.
// GET /payments/{paymentID}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	const op = "get_payment"
	paymentID, err := idParam(r, "paymentID")
	if err != nil {
		h.respondWithError(w, r, op, err, "payment_id", chi.URLParam(r, "paymentID"))
		return
	}

	payment, err := h.service.GetPayment(r.Context(), paymentID)
	if err != nil {
		h.respondWithError(w, r, op, err, "payment_id", paymentID)
		return
	}

	h.respondWithJSON(w, http.StatusOK, payment)
}

// ListPayments handles the payment listing request.
// GET /payments[?debtor_id=][&debtee_id=][&group_id=]
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	const op = "list_payments"
	query := r.URL.Query()

	filter := domain.PaymentFilter{
		DebtorID: query.Get("debtor_id"),
		DebteeID: query.Get("debtee_id"),
	}
	if raw := query.Get("group_id"); raw != "" {
		groupID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondWithError(w, r, op, util.ErrInvalidInput, "group_id", raw)
			return
		}
		filter.GroupID = &groupID
	}

	payments, err := h.service.ListPayments(r.Context(), filter)
	if err != nil {
		h.respondWithError(w, r, op, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, payments)
}

// DeletePayment handles the payment reversal request.
// DELETE /payments/{paymentID}
func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	const op = "delete_payment"
	callerID, ok := middleware.CallerID(r.Context())
	if !ok {
		h.respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	paymentID, err := idParam(r, "paymentID")
	if err != nil {
		h.respondWithError(w, r, op, err, "payment_id", chi.URLParam(r, "paymentID"))
		return
	}

	if err := h.service.DeletePayment(r.Context(), paymentID, callerID); err != nil {
		h.respondWithError(w, r, op, err, "payment_id", paymentID, "user_id", callerID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
