package handler

import (
	"net/http"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/google/uuid"
)

type DrawHandler struct {
	draws      *service.DrawService
	settlement *service.SettlementService
}

func NewDrawHandler(draws *service.DrawService, settlement *service.SettlementService) *DrawHandler {
	return &DrawHandler{draws: draws, settlement: settlement}
}

type createDrawRequest struct {
	DrawID       *uuid.UUID `json:"draw_id,omitempty"`
	SingleNumber int        `json:"single_number"`
	DoubleNumber int        `json:"double_number"`
	TripleNumber int        `json:"triple_number"`
	Ready        bool       `json:"ready,omitempty"`
}

func (h *DrawHandler) CreateDraw(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req createDrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := service.CreateDrawInput{
		Numbers: domain.DrawNumbers{Single: req.SingleNumber, Double: req.DoubleNumber, Triple: req.TripleNumber},
		Ready:   req.Ready,
	}
	if req.DrawID != nil {
		in.ID = *req.DrawID
	}

	draw, err := h.draws.Create(r.Context(), in, &a.ID)
	if err != nil {
		respondServiceError(w, r, err, "draw/create-failed", "Failed to create draw")
		return
	}
	RespondJSON(w, http.StatusCreated, draw)
}

func (h *DrawHandler) CurrentDraw(w http.ResponseWriter, r *http.Request) {
	draw, err := h.draws.Current(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "draw/read-failed", "Failed to get current draw")
		return
	}
	RespondJSON(w, http.StatusOK, draw)
}

func (h *DrawHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	drawID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	draw, err := h.draws.MarkReady(r.Context(), drawID, &a.ID)
	if err != nil {
		respondServiceError(w, r, err, "draw/ready-failed", "Failed to mark draw ready")
		return
	}
	RespondJSON(w, http.StatusOK, draw)
}

// Settle resolves every pending bet against the draw. Repeating the call
// for a draw that is already in history returns zero counts.
func (h *DrawHandler) Settle(w http.ResponseWriter, r *http.Request) {
	drawID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.settlement.Settle(r.Context(), drawID)
	if err != nil {
		respondServiceError(w, r, err, "draw/settle-failed", "Failed to settle draw")
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

func (h *DrawHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	history, err := h.draws.History(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "draw/history-read-failed", "Failed to get draw history")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"draws": history})
}

func (h *DrawHandler) HistoryEntry(w http.ResponseWriter, r *http.Request) {
	drawID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	entry, err := h.draws.HistoryEntry(r.Context(), drawID)
	if err != nil {
		respondServiceError(w, r, err, "draw/history-read-failed", "Failed to get draw history")
		return
	}
	RespondJSON(w, http.StatusOK, entry)
}
