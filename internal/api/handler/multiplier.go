package handler

import (
	"net/http"

	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/shopspring/decimal"
)

type MultiplierHandler struct {
	svc *service.MultiplierService
}

func NewMultiplierHandler(svc *service.MultiplierService) *MultiplierHandler {
	return &MultiplierHandler{svc: svc}
}

func (h *MultiplierHandler) List(w http.ResponseWriter, r *http.Request) {
	multipliers, err := h.svc.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "multiplier/read-failed", "Failed to list multipliers")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"multipliers": multipliers})
}

type setMultipliersRequest struct {
	Multipliers map[string]decimal.Decimal `json:"multipliers"`
}

// Set updates the payout table. Bets already placed keep the multiplier they
// were placed with.
func (h *MultiplierHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setMultipliersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	multipliers, err := h.svc.Set(r.Context(), req.Multipliers)
	if err != nil {
		respondServiceError(w, r, err, "multiplier/update-failed", "Failed to update multipliers")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"multipliers": multipliers})
}
