package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayload(secret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

func TestOnlyOneLiveDraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	numbers := domain.DrawNumbers{Single: 2, Double: 22, Triple: 222}

	first, err := f.draws.Create(ctx, CreateDrawInput{Numbers: numbers}, nil)
	require.NoError(t, err)

	_, err = f.draws.Create(ctx, CreateDrawInput{Numbers: numbers}, nil)
	require.ErrorIs(t, err, models.ErrLiveDrawExists)

	current, err := f.draws.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)
}

func TestCreateDrawRejectsOutOfRangeNumbers(t *testing.T) {
	f := newFixture(t)
	_, err := f.draws.Create(context.Background(), CreateDrawInput{Numbers: domain.DrawNumbers{Single: 12, Double: 22, Triple: 222}}, nil)
	require.Error(t, err)
}

func TestMarkReadyTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.draws.MarkReady(ctx, uuid.New(), nil)
	require.ErrorIs(t, err, models.ErrDrawNotFound)

	draw, err := f.draws.Create(ctx, CreateDrawInput{Numbers: domain.DrawNumbers{Single: 0, Double: 10, Triple: 999}}, nil)
	require.NoError(t, err)

	ready, err := f.draws.MarkReady(ctx, draw.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DrawStatusActive, ready.Status)

	again, err := f.draws.MarkReady(ctx, draw.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DrawStatusActive, again.Status)

	trail, err := NewAuditService(f.store).Trail(ctx, draw.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "ready", trail[1].Action)
}

func TestDrawWebhook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDrawWebhookService(f.draws, "secret", false)

	drawID := uuid.New()
	body, err := json.Marshal(DrawWebhookPayload{
		DrawID:       drawID.String(),
		SingleNumber: 5,
		DoubleNumber: 55,
		TripleNumber: 555,
	})
	require.NoError(t, err)

	_, err = svc.HandleDrawWebhook(ctx, body, "sha256=deadbeef")
	require.ErrorIs(t, err, ErrInvalidSignature)

	resp, err := svc.HandleDrawWebhook(ctx, body, signPayload("secret", body))
	require.NoError(t, err)
	assert.Equal(t, drawID, resp.Draw.ID)
	assert.Equal(t, domain.DrawStatusHold, resp.Draw.Status)

	resp, err = svc.HandleDrawWebhook(ctx, body, signPayload("secret", body))
	require.NoError(t, err)
	assert.Equal(t, "Draw already received", resp.Message)

	ready, err := json.Marshal(DrawWebhookPayload{
		DrawID:       drawID.String(),
		SingleNumber: 5,
		DoubleNumber: 55,
		TripleNumber: 555,
		Status:       domain.DrawStatusActive,
	})
	require.NoError(t, err)
	resp, err = svc.HandleDrawWebhook(ctx, ready, signPayload("secret", ready))
	require.NoError(t, err)
	assert.Equal(t, domain.DrawStatusActive, resp.Draw.Status)

	changed, err := json.Marshal(DrawWebhookPayload{DrawID: drawID.String(), SingleNumber: 6, DoubleNumber: 55, TripleNumber: 555})
	require.NoError(t, err)
	_, err = svc.HandleDrawWebhook(ctx, changed, signPayload("secret", changed))
	require.ErrorIs(t, err, ErrDrawPayloadMismatch)

	_, err = f.settlement.Settle(ctx, drawID)
	require.NoError(t, err)
	_, err = svc.HandleDrawWebhook(ctx, ready, signPayload("secret", ready))
	require.ErrorIs(t, err, models.ErrAlreadyProcessed)
}
