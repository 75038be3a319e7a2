// internal/api/handler/balance.go
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fairsplit/internal/api/types"
	"fairsplit/internal/domain"
	"fairsplit/internal/service"
	"fairsplit/internal/util"
)

// BalanceHandler handles HTTP requests related to user balances.
type BalanceHandler struct {
	responder
	service service.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(svc service.BalanceService, logger *slog.Logger) *BalanceHandler {
	return &BalanceHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// AmountRequest represents the request body for balance mutations.
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type balanceResponse struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

func newBalanceResponse(u *domain.User) balanceResponse {
	return balanceResponse{UserID: u.ID, Amount: u.Amount}
}

// GetBalance handles the get balance request.
// GET /users/{userID}/balance
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	const op = "get_balance"
	userID := chi.URLParam(r, "userID")

	user, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, r, op, err, "user_id", userID)
		return
	}

	h.respondWithJSON(w, http.StatusOK, newBalanceResponse(user))
}

// SetBalance handles the overwrite balance request.
// PUT /users/{userID}/balance
func (h *BalanceHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	const op = "set_balance"
	userID := chi.URLParam(r, "userID")

	amount, err := decodeAmount(r)
	if err != nil {
		h.respondWithError(w, r, op, err, "user_id", userID)
		return
	}

	user, err := h.service.SetBalance(r.Context(), userID, amount)
	if err != nil {
		h.respondWithError(w, r, op, err, "user_id", userID)
		return
	}

	h.respondWithJSON(w, http.StatusOK, newBalanceResponse(user))
}

// AddToBalance handles the adjust balance request. Negative amounts are debits.
// POST /users/{userID}/balance/add
func (h *BalanceHandler) AddToBalance(w http.ResponseWriter, r *http.Request) {
	const op = "add_to_balance"
	userID := chi.URLParam(r, "userID")

	delta, err := decodeAmount(r)
	if err != nil {
		h.respondWithError(w, r, op, err, "user_id", userID)
		return
	}

	user, err := h.service.AddToBalance(r.Context(), userID, delta)
	if err != nil {
		h.respondWithError(w, r, op, err, "user_id", userID)
		return
	}

	h.respondWithJSON(w, http.StatusOK, newBalanceResponse(user))
}

// GetBalanceHistory handles the balance history request.
// GET /users/{userID}/balance/history?limit=&offset=
func (h *BalanceHandler) GetBalanceHistory(w http.ResponseWriter, r *http.Request) {
	const op = "get_balance_history"
	userID := chi.URLParam(r, "userID")

	// Parse query parameters for pagination; unparsable values fall back to the defaults
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, offset = service.NormalizeHistoryPage(limit, offset)

	entries, total, err := h.service.GetBalanceHistory(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, r, op, err, "user_id", userID)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.BalanceEntry]{
		Data:       entries,
		Limit:      limit,
		Offset:     offset,
		TotalCount: total,
	})
}

func decodeAmount(r *http.Request) (decimal.Decimal, error) {
	var req AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		return decimal.Zero, err
	}
	if req.Amount == nil {
		return decimal.Zero, util.ErrInvalidInput
	}
	return *req.Amount, nil
}
