package api_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/api"
	"github.com/ayo6706/lottery-wallet/internal/api/middleware"
	"github.com/ayo6706/lottery-wallet/internal/config"
	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/idempotency"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testJWTSecret   = "test-secret-0123456789-test-secret"
	testJWTIssuer   = "lottery-wallet-test"
	testJWTAudience = "lottery-api-test"
	testHMACKey     = "draw-webhook-test-key"
)

func TestMain(m *testing.M) {
	middleware.SetJWTSecret(testJWTSecret)
	middleware.SetJWTValidation(testJWTIssuer, testJWTAudience)
	os.Exit(m.Run())
}

type testAPI struct {
	handler  http.Handler
	identity *service.IdentityService
	accounts *service.AccountService
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	store := repository.NewMemoryStore()
	cfg := &config.Config{
		HTTPPort:           "0",
		JWTSecret:          testJWTSecret,
		JWTIssuer:          testJWTIssuer,
		JWTAudience:        testJWTAudience,
		WebhookHMACKey:     testHMACKey,
		PublicRateLimitRPS: 1000,
		AuthRateLimitRPS:   1000,
		IdempotencyTTL:     time.Hour,
		DefaultCurrency:    domain.DefaultCurrency,
		MinWithdrawMicros:  domain.Units(100),
	}

	identity := service.NewIdentityService(store)
	accounts := service.NewAccountService(store, service.AccountConfig{Currency: cfg.DefaultCurrency})
	draws := service.NewDrawService(store)
	router := api.NewRouter(api.Deps{
		Config: cfg,
		Logger: zap.NewNop(),
		Services: api.Services{
			Identity:    identity,
			Accounts:    accounts,
			Ledger:      service.NewLedgerService(store),
			Transfers:   service.NewTransferService(store, decimal.NewFromInt(2)),
			Bets:        service.NewBetService(store, nil),
			Draws:       draws,
			Settlement:  service.NewSettlementService(store, 10),
			Withdrawals: service.NewWithdrawService(store, cfg.MinWithdrawMicros),
			Multipliers: service.NewMultiplierService(store),
			Webhooks:    service.NewDrawWebhookService(draws, cfg.WebhookHMACKey, false),
		},
		Idempotency: idempotency.NewStore(nil, store, cfg.IdempotencyTTL),
	})
	return &testAPI{handler: router.Routes(), identity: identity, accounts: accounts}
}

type wallet struct {
	user  *models.User
	token string
}

// newWallet creates a user of role with an open account holding mainUnits
// in main.
func (a *testAPI) newWallet(t *testing.T, role string, mainUnits int64) wallet {
	t.Helper()
	ctx := context.Background()
	short := uuid.NewString()[:8]
	user, err := a.identity.CreateUser(ctx, service.CreateUserInput{
		Username: role + "_" + short,
		Email:    role + "_" + short + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)
	_, err = a.accounts.Open(ctx, user.ID)
	require.NoError(t, err)
	if mainUnits > 0 {
		_, err = a.accounts.TopUp(ctx, user.ID, domain.Units(mainUnits), "test funding", nil)
		require.NoError(t, err)
	}
	token, err := middleware.IssueToken(user.ID.String(), user.Role, time.Hour)
	require.NoError(t, err)
	return wallet{user: user, token: token}
}

type call struct {
	method  string
	path    string
	token   string
	body    any
	headers map[string]string
}

func (a *testAPI) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := c.body.(type) {
	case nil:
	case []byte:
		payload = b
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(c.method, c.path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func idemKey() map[string]string {
	return map[string]string{"Idempotency-Key": uuid.NewString()}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testAPI) account(t *testing.T, w wallet) models.Account {
	t.Helper()
	resp := a.do(t, call{method: http.MethodGet, path: "/v1/accounts/" + w.user.ID.String(), token: w.token})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[models.Account](t, resp)
}

func signPayload(body []byte) string {
	h := hmac.New(sha256.New, []byte(testHMACKey))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

func TestRFC7807ProblemDetails(t *testing.T) {
	a := setupAPI(t)
	path := "/v1/accounts/" + uuid.NewString()

	w := a.do(t, call{method: http.MethodGet, path: path})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")
	body := decode[map[string]any](t, w)
	assert.NotEmpty(t, body["type"])
	assert.Equal(t, float64(http.StatusUnauthorized), body["status"])
	assert.NotEmpty(t, body["title"])
	assert.NotEmpty(t, body["detail"])
	assert.Equal(t, path, body["instance"])
	assert.NotEmpty(t, body["request_id"])
}

func TestCreateUserIgnoresRequestedRole(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, call{method: http.MethodPost, path: "/v1/users", body: map[string]string{
		"username": "eve",
		"email":    "eve@example.com",
		"role":     "admin",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[models.User](t, w)
	assert.Equal(t, domain.RoleUser, user.Role)

	login := a.do(t, call{method: http.MethodPost, path: "/v1/auth/login", body: map[string]string{"email": "EVE@example.com"}})
	require.Equal(t, http.StatusOK, login.Code)
	resp := decode[struct {
		Token string `json:"token"`
	}](t, login)
	parsed, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return middleware.JWTSecret(), nil
	}, jwt.WithIssuer(testJWTIssuer), jwt.WithAudience(testJWTAudience))
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, domain.RoleUser, claims["role"])
	assert.Equal(t, user.ID.String(), claims["user_id"])
}

func TestAdminCanCreateAgent(t *testing.T) {
	a := setupAPI(t)
	admin := a.newWallet(t, domain.RoleAdmin, 0)

	w := a.do(t, call{method: http.MethodPost, path: "/v1/users", token: admin.token, body: map[string]string{
		"username": "agent_smith",
		"email":    "smith@example.com",
		"role":     domain.RoleAgent,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, domain.RoleAgent, decode[models.User](t, w).Role)

	dup := a.do(t, call{method: http.MethodPost, path: "/v1/users", body: map[string]string{
		"username": "again",
		"email":    "smith@example.com",
	}})
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestAuthLoginInvalidUser(t *testing.T) {
	a := setupAPI(t)

	cases := []struct {
		name string
		body map[string]string
		want int
	}{
		{name: "unknown_user", body: map[string]string{"user_id": uuid.NewString()}, want: http.StatusNotFound},
		{name: "unknown_email", body: map[string]string{"email": "nobody@example.com"}, want: http.StatusNotFound},
		{name: "invalid_user_id_format", body: map[string]string{"user_id": "not-a-uuid"}, want: http.StatusBadRequest},
		{name: "empty", body: map[string]string{}, want: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(t, call{method: http.MethodPost, path: "/v1/auth/login", body: tc.body})
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestOpenAccountAndAccessControl(t *testing.T) {
	a := setupAPI(t)
	user, err := a.identity.CreateUser(context.Background(), service.CreateUserInput{Username: "ayo", Email: "ayo@example.com"})
	require.NoError(t, err)
	token, err := middleware.IssueToken(user.ID.String(), user.Role, time.Hour)
	require.NoError(t, err)

	w := a.do(t, call{method: http.MethodPost, path: "/v1/accounts", token: token, headers: idemKey()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	acc := decode[models.Account](t, w)
	assert.Equal(t, user.ID, acc.UserID)
	assert.Equal(t, domain.DefaultCurrency, acc.Currency)

	again := a.do(t, call{method: http.MethodPost, path: "/v1/accounts", token: token, headers: idemKey()})
	assert.Equal(t, http.StatusConflict, again.Code)

	other := a.newWallet(t, domain.RoleUser, 0)
	forbidden := a.do(t, call{method: http.MethodGet, path: "/v1/accounts/" + user.ID.String(), token: other.token})
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	admin := a.newWallet(t, domain.RoleAdmin, 0)
	allowed := a.do(t, call{method: http.MethodGet, path: "/v1/accounts/" + user.ID.String(), token: admin.token})
	assert.Equal(t, http.StatusOK, allowed.Code)
}

func TestTopUpIsAdminOnlyAndLedgered(t *testing.T) {
	a := setupAPI(t)
	user := a.newWallet(t, domain.RoleUser, 0)
	admin := a.newWallet(t, domain.RoleAdmin, 0)
	path := "/v1/accounts/" + user.user.ID.String() + "/topup"

	denied := a.do(t, call{method: http.MethodPost, path: path, token: user.token, headers: idemKey(), body: map[string]string{"amount": "500"}})
	assert.Equal(t, http.StatusForbidden, denied.Code)

	ok := a.do(t, call{method: http.MethodPost, path: path, token: admin.token, headers: idemKey(), body: map[string]string{"amount": "500.25"}})
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	assert.Equal(t, domain.Units(500)+250_000, a.account(t, user).Balances.Main)

	tooPrecise := a.do(t, call{method: http.MethodPost, path: path, token: admin.token, headers: idemKey(), body: map[string]string{"amount": "0.0000001"}})
	assert.Equal(t, http.StatusBadRequest, tooPrecise.Code)

	statement := a.do(t, call{method: http.MethodGet, path: "/v1/accounts/" + user.user.ID.String() + "/statement?limit=10", token: user.token})
	require.Equal(t, http.StatusOK, statement.Code)
	entries := decode[struct {
		Entries []models.LedgerEntry `json:"entries"`
	}](t, statement).Entries
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntryTypeDeposit, entries[0].Type)

	activity := a.do(t, call{method: http.MethodGet, path: "/v1/accounts/" + user.user.ID.String() + "/activity", token: user.token})
	require.Equal(t, http.StatusOK, activity.Code)
	assert.Equal(t, "ledger", decode[map[string]any](t, activity)["source"])
}

func TestTransferRequiresIdempotencyKey(t *testing.T) {
	a := setupAPI(t)
	user := a.newWallet(t, domain.RoleUser, 100)

	w := a.do(t, call{method: http.MethodPost, path: "/v1/transfers", token: user.token, body: map[string]string{
		"from_compartment": domain.CompartmentMain,
		"to_compartment":   domain.CompartmentBank,
		"amount":           "10",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.Units(100), a.account(t, user).Balances.Main)
}

func TestTransferIdempotency(t *testing.T) {
	a := setupAPI(t)
	user := a.newWallet(t, domain.RoleUser, 100)
	headers := idemKey()
	body := map[string]string{
		"from_compartment": domain.CompartmentMain,
		"to_compartment":   domain.CompartmentBank,
		"amount":           "40",
	}

	first := a.do(t, call{method: http.MethodPost, path: "/v1/transfers", token: user.token, headers: headers, body: body})
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := a.do(t, call{method: http.MethodPost, path: "/v1/transfers", token: user.token, headers: headers, body: body})
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "database", second.Header().Get("X-Idempotent-Replay"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	acc := a.account(t, user)
	assert.Equal(t, domain.Units(60), acc.Balances.Main)
	assert.Equal(t, domain.Units(40), acc.Balances.Bank)

	body["amount"] = "41"
	conflict := a.do(t, call{method: http.MethodPost, path: "/v1/transfers", token: user.token, headers: headers, body: body})
	assert.Equal(t, http.StatusConflict, conflict.Code)
}

func TestTransferErrors(t *testing.T) {
	a := setupAPI(t)
	user := a.newWallet(t, domain.RoleUser, 10)
	other := a.newWallet(t, domain.RoleUser, 10)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{
			name: "insufficient_funds",
			body: map[string]any{"from_compartment": "main", "to_compartment": "bank", "amount": "11"},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown_compartment",
			body: map[string]any{"from_compartment": "main", "to_compartment": "vault", "amount": "1"},
			want: http.StatusBadRequest,
		},
		{
			name: "debit_other_wallet",
			body: map[string]any{"from_user_id": other.user.ID, "from_compartment": "main", "to_compartment": "main", "amount": "1"},
			want: http.StatusForbidden,
		},
		{
			name: "bank_of_other_wallet",
			body: map[string]any{"to_user_id": other.user.ID, "from_compartment": "main", "to_compartment": "bank", "amount": "1"},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown_field",
			body: map[string]any{"from_compartment": "main", "to_compartment": "bank", "amount": "1", "currency": "USD"},
			want: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(t, call{method: http.MethodPost, path: "/v1/transfers", token: user.token, headers: idemKey(), body: tc.body})
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, domain.Units(10), a.account(t, user).Balances.Main)
}

func TestDepositIsAgentOnly(t *testing.T) {
	a := setupAPI(t)
	agent := a.newWallet(t, domain.RoleAgent, 500)
	user := a.newWallet(t, domain.RoleUser, 0)
	body := map[string]any{"user_id": user.user.ID, "amount": "200"}

	denied := a.do(t, call{method: http.MethodPost, path: "/v1/deposits", token: user.token, headers: idemKey(), body: body})
	assert.Equal(t, http.StatusForbidden, denied.Code)

	ok := a.do(t, call{method: http.MethodPost, path: "/v1/deposits", token: agent.token, headers: idemKey(), body: body})
	require.Equal(t, http.StatusCreated, ok.Code, ok.Body.String())
	assert.Equal(t, domain.Units(200), a.account(t, user).Balances.Main)
	assert.Equal(t, domain.Units(300), a.account(t, agent).Balances.Main)
	assert.Equal(t, int64(1), a.account(t, user).Stats.DepositCount)
}

func TestBetDrawSettlementFlow(t *testing.T) {
	a := setupAPI(t)
	admin := a.newWallet(t, domain.RoleAdmin, 0)
	winner := a.newWallet(t, domain.RoleUser, 1000)
	loser := a.newWallet(t, domain.RoleUser, 1000)

	place := func(w wallet, number int) uuid.UUID {
		resp := a.do(t, call{method: http.MethodPost, path: "/v1/bets", token: w.token, headers: idemKey(), body: map[string]any{"number": number, "amount": "100"}})
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		return decode[service.PlaceBetResult](t, resp).BetID
	}
	winningBet := place(winner, 7)
	place(loser, 3)
	assert.Equal(t, domain.Units(900), a.account(t, winner).Balances.Main)

	drawID := uuid.New()
	payload, err := json.Marshal(service.DrawWebhookPayload{
		DrawID:       drawID.String(),
		SingleNumber: 7,
		DoubleNumber: 42,
		TripleNumber: 123,
	})
	require.NoError(t, err)
	hook := a.do(t, call{method: http.MethodPost, path: "/v1/webhooks/draws", body: payload, headers: map[string]string{"X-Webhook-Signature": signPayload(payload)}})
	require.Equal(t, http.StatusOK, hook.Code, hook.Body.String())

	current := a.do(t, call{method: http.MethodGet, path: "/v1/draws/current"})
	require.Equal(t, http.StatusOK, current.Code)
	assert.Equal(t, domain.DrawStatusHold, decode[models.Draw](t, current).Status)

	settlePath := "/v1/draws/" + drawID.String() + "/settle"
	notReady := a.do(t, call{method: http.MethodPost, path: settlePath, token: admin.token})
	assert.Equal(t, http.StatusConflict, notReady.Code)

	userSettle := a.do(t, call{method: http.MethodPost, path: settlePath, token: winner.token})
	assert.Equal(t, http.StatusForbidden, userSettle.Code)

	ready := a.do(t, call{method: http.MethodPost, path: "/v1/draws/" + drawID.String() + "/ready", token: admin.token})
	require.Equal(t, http.StatusOK, ready.Code, ready.Body.String())

	settled := a.do(t, call{method: http.MethodPost, path: settlePath, token: admin.token})
	require.Equal(t, http.StatusOK, settled.Code, settled.Body.String())
	result := decode[service.SettleResult](t, settled)
	assert.Equal(t, int64(1), result.WinCount)
	assert.Equal(t, int64(1), result.LossCount)

	assert.Equal(t, domain.Units(1800), a.account(t, winner).Balances.Main)
	assert.Equal(t, domain.Units(900), a.account(t, loser).Balances.Main)

	bet := a.do(t, call{method: http.MethodGet, path: "/v1/bets/" + winningBet.String(), token: winner.token})
	require.Equal(t, http.StatusOK, bet.Code)
	assert.Equal(t, domain.BetStatusWin, decode[models.Bet](t, bet).Status)
	hidden := a.do(t, call{method: http.MethodGet, path: "/v1/bets/" + winningBet.String(), token: loser.token})
	assert.Equal(t, http.StatusNotFound, hidden.Code)

	again := a.do(t, call{method: http.MethodPost, path: settlePath, token: admin.token})
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, service.SettleResult{}, decode[service.SettleResult](t, again))

	history := a.do(t, call{method: http.MethodGet, path: "/v1/draws/history"})
	require.Equal(t, http.StatusOK, history.Code)
	draws := decode[struct {
		Draws []models.DrawHistory `json:"draws"`
	}](t, history).Draws
	require.Len(t, draws, 1)
	assert.Equal(t, drawID, draws[0].ID)
	assert.Equal(t, int64(1), draws[0].WinCount)

	redelivered := a.do(t, call{method: http.MethodPost, path: "/v1/webhooks/draws", body: payload, headers: map[string]string{"X-Webhook-Signature": signPayload(payload)}})
	assert.Equal(t, http.StatusConflict, redelivered.Code)

	noLive := a.do(t, call{method: http.MethodGet, path: "/v1/draws/current"})
	assert.Equal(t, http.StatusNotFound, noLive.Code)
}

func TestPlaceBetRejectsInvalidInput(t *testing.T) {
	a := setupAPI(t)
	user := a.newWallet(t, domain.RoleUser, 50)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "missing_number", body: map[string]any{"amount": "10"}, want: http.StatusBadRequest},
		{name: "number_out_of_range", body: map[string]any{"number": 1000, "amount": "10"}, want: http.StatusBadRequest},
		{name: "zero_amount", body: map[string]any{"number": 5, "amount": "0"}, want: http.StatusBadRequest},
		{name: "insufficient_funds", body: map[string]any{"number": 5, "amount": "51"}, want: http.StatusUnprocessableEntity},
		{name: "amount_beyond_range", body: map[string]any{"number": 5, "amount": "10000000000000"}, want: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(t, call{method: http.MethodPost, path: "/v1/bets", token: user.token, headers: idemKey(), body: tc.body})
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, domain.Units(50), a.account(t, user).Balances.Main)
}

func TestAmountBeyondRangeIsNotReportedAsPrecision(t *testing.T) {
	a := setupAPI(t)
	user := a.newWallet(t, domain.RoleUser, 50)

	w := a.do(t, call{method: http.MethodPost, path: "/v1/bets", token: user.token, headers: idemKey(), body: map[string]any{"number": 5, "amount": "10000000000000"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrAmountOutOfRange.Error())
	assert.NotContains(t, w.Body.String(), "decimal places")
}

func TestWebhookInvalidSignature(t *testing.T) {
	a := setupAPI(t)
	payload := []byte(`{"draw_id":"` + uuid.NewString() + `","single_number":1,"double_number":11,"triple_number":111}`)

	cases := []struct {
		name      string
		signature string
	}{
		{name: "missing", signature: ""},
		{name: "wrong_key", signature: "sha256=deadbeef"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(t, call{method: http.MethodPost, path: "/v1/webhooks/draws", body: payload, headers: map[string]string{"X-Webhook-Signature": tc.signature}})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
	assert.Equal(t, http.StatusNotFound, a.do(t, call{method: http.MethodGet, path: "/v1/draws/current"}).Code)
}

func TestWithdrawApproveAndReject(t *testing.T) {
	a := setupAPI(t)
	user := a.newWallet(t, domain.RoleUser, 1000)
	agent := a.newWallet(t, domain.RoleAgent, 0)
	otherAgent := a.newWallet(t, domain.RoleAgent, 0)

	request := func(amount string) models.WithdrawRequest {
		w := a.do(t, call{method: http.MethodPost, path: "/v1/withdrawals", token: user.token, headers: idemKey(), body: map[string]string{
			"agent_email":    agent.user.Email,
			"method":         "bkash",
			"payment_number": "01700000000",
			"amount":         amount,
		}})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decode[models.WithdrawRequest](t, w)
	}

	approved := request("300")
	rejected := request("200")
	assert.Equal(t, domain.Units(500), a.account(t, user).Balances.Main)

	queue := a.do(t, call{method: http.MethodGet, path: "/v1/agents/me/withdrawals?status=pending", token: agent.token})
	require.Equal(t, http.StatusOK, queue.Code)
	assert.Len(t, decode[struct {
		Withdrawals []models.WithdrawRequest `json:"withdrawals"`
	}](t, queue).Withdrawals, 2)

	userApprove := a.do(t, call{method: http.MethodPost, path: "/v1/withdrawals/" + approved.ID.String() + "/approve", token: user.token})
	assert.Equal(t, http.StatusForbidden, userApprove.Code)

	wrongAgent := a.do(t, call{method: http.MethodPost, path: "/v1/withdrawals/" + approved.ID.String() + "/approve", token: otherAgent.token})
	assert.Equal(t, http.StatusNotFound, wrongAgent.Code)

	ok := a.do(t, call{method: http.MethodPost, path: "/v1/withdrawals/" + approved.ID.String() + "/approve", token: agent.token})
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	assert.Equal(t, domain.WithdrawStatusApproved, decode[models.WithdrawRequest](t, ok).Status)
	assert.Equal(t, domain.Units(300), a.account(t, agent).Balances.Main)

	twice := a.do(t, call{method: http.MethodPost, path: "/v1/withdrawals/" + approved.ID.String() + "/reject", token: agent.token})
	assert.Equal(t, http.StatusConflict, twice.Code)

	rej := a.do(t, call{method: http.MethodPost, path: "/v1/withdrawals/" + rejected.ID.String() + "/reject", token: agent.token})
	require.Equal(t, http.StatusOK, rej.Code, rej.Body.String())
	assert.Equal(t, domain.Units(700), a.account(t, user).Balances.Main)

	seen := a.do(t, call{method: http.MethodGet, path: "/v1/withdrawals/" + rejected.ID.String(), token: user.token})
	require.Equal(t, http.StatusOK, seen.Code)
	assert.Equal(t, domain.WithdrawStatusRejected, decode[models.WithdrawRequest](t, seen).Status)
	hidden := a.do(t, call{method: http.MethodGet, path: "/v1/withdrawals/" + rejected.ID.String(), token: otherAgent.token})
	assert.Equal(t, http.StatusNotFound, hidden.Code)
}

func TestWithdrawBelowMinimum(t *testing.T) {
	a := setupAPI(t)
	user := a.newWallet(t, domain.RoleUser, 1000)
	agent := a.newWallet(t, domain.RoleAgent, 0)

	w := a.do(t, call{method: http.MethodPost, path: "/v1/withdrawals", token: user.token, headers: idemKey(), body: map[string]string{
		"agent_email":    agent.user.Email,
		"method":         "nagad",
		"payment_number": "01800000000",
		"amount":         "99.99",
	}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.Units(1000), a.account(t, user).Balances.Main)
}

func TestMultipliersAdminOnly(t *testing.T) {
	a := setupAPI(t)
	user := a.newWallet(t, domain.RoleUser, 0)
	admin := a.newWallet(t, domain.RoleAdmin, 0)
	body := map[string]any{"multipliers": map[string]string{"single": "8.5"}}

	denied := a.do(t, call{method: http.MethodPut, path: "/v1/multipliers", token: user.token, body: body})
	assert.Equal(t, http.StatusForbidden, denied.Code)

	ok := a.do(t, call{method: http.MethodPut, path: "/v1/multipliers", token: admin.token, body: body})
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())

	list := a.do(t, call{method: http.MethodGet, path: "/v1/multipliers"})
	require.Equal(t, http.StatusOK, list.Code)
	table := decode[struct {
		Multipliers []models.Multiplier `json:"multipliers"`
	}](t, list).Multipliers
	found := false
	for _, m := range table {
		if m.BetType == domain.BetTypeSingle {
			found = true
			assert.True(t, m.Multiplier.Equal(decimal.RequireFromString("8.5")))
		}
	}
	assert.True(t, found)

	invalid := a.do(t, call{method: http.MethodPut, path: "/v1/multipliers", token: admin.token, body: map[string]any{"multipliers": map[string]string{"quad": "1"}}})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	a := setupAPI(t)

	cases := []struct {
		name string
		path string
	}{
		{name: "live", path: "/health/live"},
		{name: "ready", path: "/health/ready"},
		{name: "metrics", path: "/metrics"},
		{name: "openapi", path: "/openapi.yaml"},
		{name: "swagger", path: "/swagger/index.html"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(t, call{method: http.MethodGet, path: tc.path})
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
