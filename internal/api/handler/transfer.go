package handler

import (
	"net/http"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferHandler struct {
	svc *service.TransferService
}

func NewTransferHandler(svc *service.TransferService) *TransferHandler {
	return &TransferHandler{svc: svc}
}

type transferRequest struct {
	FromUserID      *uuid.UUID      `json:"from_user_id,omitempty"`
	FromCompartment string          `json:"from_compartment"`
	ToUserID        *uuid.UUID      `json:"to_user_id,omitempty"`
	ToCompartment   string          `json:"to_compartment"`
	Amount          decimal.Decimal `json:"amount"`
	Policy          string          `json:"policy,omitempty"`
	Note            string          `json:"note,omitempty"`
}

// Transfer moves funds between compartments. Both sides default to the
// caller's own wallet; only admins may debit someone else's.
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, ok := amountMicros(w, r, req.Amount)
	if !ok {
		return
	}
	from, to := a.ID, a.ID
	if req.FromUserID != nil {
		from = *req.FromUserID
	}
	if req.ToUserID != nil {
		to = *req.ToUserID
	}
	if !a.canAccess(from) {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return
	}

	result, err := h.svc.Transfer(r.Context(), service.TransferRequest{
		FromUserID:      from,
		FromCompartment: req.FromCompartment,
		ToUserID:        to,
		ToCompartment:   req.ToCompartment,
		AmountMicros:    amount,
		Policy:          domain.InterestPolicy(req.Policy),
		Note:            req.Note,
	})
	if err != nil {
		respondServiceError(w, r, err, "transfer/failed", "Failed to transfer")
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

type depositRequest struct {
	UserID uuid.UUID       `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Deposit credits a user with cash the calling agent collected, debiting the
// agent's own main compartment.
func (h *TransferHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req depositRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == uuid.Nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-user-id", "user_id is required")
		return
	}
	amount, ok := amountMicros(w, r, req.Amount)
	if !ok {
		return
	}

	result, err := h.svc.Deposit(r.Context(), a.ID, req.UserID, amount)
	if err != nil {
		respondServiceError(w, r, err, "deposit/failed", "Failed to deposit")
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}
