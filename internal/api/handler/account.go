package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ActivityReader serves the recent-activity mirror.
type ActivityReader interface {
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error)
}

type AccountHandler struct {
	accounts *service.AccountService
	ledger   *service.LedgerService
	activity ActivityReader
}

func NewAccountHandler(accounts *service.AccountService, ledger *service.LedgerService, activity ActivityReader) *AccountHandler {
	return &AccountHandler{accounts: accounts, ledger: ledger, activity: activity}
}

type openAccountRequest struct {
	UserID *uuid.UUID `json:"user_id,omitempty"`
}

// OpenAccount opens the caller's wallet. Admins may open one for any user.
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req openAccountRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	userID := a.ID
	if req.UserID != nil {
		userID = *req.UserID
	}
	if !a.canAccess(userID) {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return
	}

	account, err := h.accounts.Open(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "account/create-failed", "Failed to open account")
		return
	}
	RespondJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	account, err := h.accounts.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "account/read-failed", "Failed to get account")
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

// GetStatement lists ledger entries newest first. since/until take RFC 3339
// timestamps.
func (h *AccountHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	window := service.LedgerWindow{}
	window.Limit, window.Offset = pageParams(r)
	for param, dst := range map[string]*time.Time{"since": &window.Since, "until": &window.Until} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-"+param, "Invalid "+param+": expected RFC 3339")
			return
		}
		*dst = t
	}

	entries, err := h.ledger.ListForUser(r.Context(), userID, window)
	if err != nil {
		respondServiceError(w, r, err, "account/statement-read-failed", "Failed to get statement")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"limit":   window.Limit,
		"offset":  window.Offset,
	})
}

// GetActivity serves the most recent entries from the activity mirror,
// falling back to the ledger when the mirror is unavailable.
func (h *AccountHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	limit, _ := pageParams(r)
	if h.activity != nil {
		entries, err := h.activity.Recent(r.Context(), userID, limit)
		if err == nil {
			RespondJSON(w, http.StatusOK, map[string]any{"entries": entries, "source": "cache"})
			return
		}
		zap.L().Warn("activity mirror read failed, using ledger", zap.Error(err), zap.String("user_id", userID.String()))
	}
	entries, err := h.ledger.ListForUser(r.Context(), userID, service.LedgerWindow{Limit: limit})
	if err != nil {
		respondServiceError(w, r, err, "account/activity-read-failed", "Failed to get activity")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"entries": entries, "source": "ledger"})
}

type topUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// TopUp credits main from the house. Mounted behind an admin role check.
func (h *AccountHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	userID, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}
	var req topUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, ok := amountMicros(w, r, req.Amount)
	if !ok {
		return
	}

	account, err := h.accounts.TopUp(r.Context(), userID, amount, req.Note, &a.ID)
	if err != nil {
		respondServiceError(w, r, err, "account/topup-failed", "Failed to top up account")
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

// authorize resolves the {userID} path parameter and checks the caller may
// see that wallet.
func (h *AccountHandler) authorize(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	a, ok := mustActor(w, r)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := uuidParam(w, r, "userID")
	if !ok {
		return uuid.Nil, false
	}
	if !a.canAccess(userID) {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return uuid.Nil, false
	}
	return userID, true
}
