package handler

import (
	"net/http"

	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/shopspring/decimal"
)

type BetHandler struct {
	svc *service.BetService
}

func NewBetHandler(svc *service.BetService) *BetHandler {
	return &BetHandler{svc: svc}
}

type placeBetRequest struct {
	Number *int            `json:"number"`
	Amount decimal.Decimal `json:"amount"`
}

// PlaceBet stakes from the caller's main compartment. The bet type is
// derived from the number.
func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req placeBetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Number == nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-number", "number is required")
		return
	}
	amount, ok := amountMicros(w, r, req.Amount)
	if !ok {
		return
	}

	result, err := h.svc.PlaceBet(r.Context(), service.PlaceBetRequest{
		UserID:       a.ID,
		Number:       *req.Number,
		AmountMicros: amount,
	})
	if err != nil {
		respondServiceError(w, r, err, "bet/place-failed", "Failed to place bet")
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

func (h *BetHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	betID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	bet, err := h.svc.Get(r.Context(), betID)
	if err != nil {
		respondServiceError(w, r, err, "bet/read-failed", "Failed to get bet")
		return
	}
	if !a.canAccess(bet.AccountID) {
		RespondError(w, r, http.StatusNotFound, "bet/not-found", "bet not found")
		return
	}
	RespondJSON(w, http.StatusOK, bet)
}

// ListBets returns the caller's bets, newest first.
func (h *BetHandler) ListBets(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	bets, err := h.svc.ListForUser(r.Context(), a.ID, limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "bet/list-failed", "Failed to list bets")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"bets": bets})
}
