package handler

import (
	"context"
	"net/http"

	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawHandler struct {
	withdrawals *service.WithdrawService
	identity    *service.IdentityService
}

func NewWithdrawHandler(withdrawals *service.WithdrawService, identity *service.IdentityService) *WithdrawHandler {
	return &WithdrawHandler{withdrawals: withdrawals, identity: identity}
}

type withdrawRequest struct {
	UserEmail     string          `json:"user_email,omitempty"`
	AgentEmail    string          `json:"agent_email"`
	Method        string          `json:"method"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// RequestWithdraw debits the caller now and queues the payout with the named
// agent. Admins may file on behalf of another user via user_email.
func (h *WithdrawHandler) RequestWithdraw(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req withdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, ok := amountMicros(w, r, req.Amount)
	if !ok {
		return
	}

	userEmail := req.UserEmail
	if userEmail == "" || !a.isAdmin() {
		caller, err := h.identity.GetUser(r.Context(), a.ID)
		if err != nil {
			respondServiceError(w, r, err, "withdraw/request-failed", "Failed to resolve caller")
			return
		}
		userEmail = caller.Email
	}

	wr, err := h.withdrawals.Request(r.Context(), service.WithdrawInput{
		UserEmail:     userEmail,
		AgentEmail:    req.AgentEmail,
		Method:        req.Method,
		PaymentNumber: req.PaymentNumber,
		AmountMicros:  amount,
	})
	if err != nil {
		respondServiceError(w, r, err, "withdraw/request-failed", "Failed to request withdraw")
		return
	}
	RespondJSON(w, http.StatusCreated, wr)
}

// GetWithdraw is visible to the requester, the addressed agent and admins.
func (h *WithdrawHandler) GetWithdraw(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	wr, err := h.withdrawals.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "withdraw/read-failed", "Failed to get withdraw request")
		return
	}
	if !a.canAccess(wr.UserID) && a.ID != wr.AgentID {
		RespondError(w, r, http.StatusNotFound, "withdraw/not-found", "withdraw request not found")
		return
	}
	RespondJSON(w, http.StatusOK, wr)
}

// ListForAgent is the calling agent's queue. status filters by state and
// defaults to every state.
func (h *WithdrawHandler) ListForAgent(w http.ResponseWriter, r *http.Request) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	requests, err := h.withdrawals.ListForAgent(r.Context(), a.ID, r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "withdraw/list-failed", "Failed to list withdraw requests")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"withdrawals": requests})
}

func (h *WithdrawHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.withdrawals.Approve, "withdraw/approve-failed", "Failed to approve withdraw request")
}

func (h *WithdrawHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.withdrawals.Reject, "withdraw/reject-failed", "Failed to reject withdraw request")
}

type decision func(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (*models.WithdrawRequest, error)

func (h *WithdrawHandler) decide(w http.ResponseWriter, r *http.Request, fn decision, failType, failMsg string) {
	a, ok := mustActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	wr, err := fn(r.Context(), id, &a.ID)
	if err != nil {
		respondServiceError(w, r, err, failType, failMsg)
		return
	}
	RespondJSON(w, http.StatusOK, wr)
}
