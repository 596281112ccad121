package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrDrawPayloadMismatch = errors.New("draw payload does not match the existing draw")
)

// DrawWebhookService accepts signed draw results from the external producer.
type DrawWebhookService struct {
	draws   *DrawService
	hmacKey []byte
	skipSig bool
}

func NewDrawWebhookService(draws *DrawService, hmacKey string, skipSignature bool) *DrawWebhookService {
	return &DrawWebhookService{
		draws:   draws,
		hmacKey: []byte(hmacKey),
		skipSig: skipSignature,
	}
}

// DrawWebhookPayload is the producer's body. Status is "hold" or "active".
type DrawWebhookPayload struct {
	DrawID       string `json:"draw_id"`
	SingleNumber int    `json:"single_number"`
	DoubleNumber int    `json:"double_number"`
	TripleNumber int    `json:"triple_number"`
	Status       string `json:"status"`
}

type DrawWebhookResponse struct {
	Draw    *models.Draw `json:"draw"`
	Message string       `json:"message"`
}

// HandleDrawWebhook verifies the signature and ingests the draw. Redelivery
// of a draw that already exists with the same numbers is acknowledged as-is.
func (s *DrawWebhookService) HandleDrawWebhook(ctx context.Context, payload []byte, signature string) (*DrawWebhookResponse, error) {
	if !s.verifyHMAC(payload, signature) {
		return nil, ErrInvalidSignature
	}

	var in DrawWebhookPayload
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid payload: %v", ErrInvalidInput, err)
	}
	drawID, err := uuid.Parse(strings.TrimSpace(in.DrawID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid draw_id: %v", ErrInvalidInput, err)
	}
	status := normalizeState(in.Status)
	if status == "" {
		status = domain.DrawStatusHold
	}
	if status != domain.DrawStatusHold && status != domain.DrawStatusActive {
		return nil, fmt.Errorf("%w: unsupported draw status %q", ErrInvalidInput, in.Status)
	}
	numbers := domain.DrawNumbers{Single: in.SingleNumber, Double: in.DoubleNumber, Triple: in.TripleNumber}

	existing, err := s.draws.Get(ctx, drawID)
	switch {
	case err == nil:
		if existing.SingleNumber != numbers.Single || existing.DoubleNumber != numbers.Double || existing.TripleNumber != numbers.Triple {
			return nil, ErrDrawPayloadMismatch
		}
		if status == domain.DrawStatusActive && existing.Status != domain.DrawStatusActive {
			existing, err = s.draws.MarkReady(ctx, drawID, nil)
			if err != nil {
				return nil, err
			}
			return &DrawWebhookResponse{Draw: existing, Message: "Draw marked ready"}, nil
		}
		return &DrawWebhookResponse{Draw: existing, Message: "Draw already received"}, nil
	case !errors.Is(err, models.ErrDrawNotFound):
		return nil, err
	}

	if _, err := s.draws.HistoryEntry(ctx, drawID); err == nil {
		return nil, fmt.Errorf("%w: draw %s is already settled", models.ErrAlreadyProcessed, drawID)
	}

	draw, err := s.draws.Create(ctx, CreateDrawInput{
		ID:      drawID,
		Numbers: numbers,
		Ready:   status == domain.DrawStatusActive,
	}, nil)
	if err != nil {
		return nil, err
	}
	return &DrawWebhookResponse{Draw: draw, Message: "Draw received"}, nil
}

func (s *DrawWebhookService) verifyHMAC(payload []byte, signature string) bool {
	if s.skipSig {
		return true
	}
	if len(s.hmacKey) == 0 {
		return false
	}
	h := hmac.New(sha256.New, s.hmacKey)
	h.Write(payload)
	expected := "sha256=" + hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
