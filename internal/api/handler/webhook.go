package handler

import (
	"io"
	"net/http"

	"github.com/ayo6706/lottery-wallet/internal/service"
)

const signatureHeader = "X-Webhook-Signature"

// WebhookHandler receives signed draw results from the draw producer.
type WebhookHandler struct {
	svc *service.DrawWebhookService
}

func NewWebhookHandler(svc *service.DrawWebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// HandleDrawWebhook handles POST /v1/webhooks/draws. The signature covers the
// raw body, so it is read before any decoding.
func (h *WebhookHandler) HandleDrawWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Failed to read request body")
		return
	}

	resp, err := h.svc.HandleDrawWebhook(r.Context(), body, r.Header.Get(signatureHeader))
	if err != nil {
		respondServiceError(w, r, err, "webhook/processing-failed", "Failed to process draw webhook")
		return
	}
	RespondJSON(w, http.StatusOK, resp)
}
