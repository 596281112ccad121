package api

import (
	"net/http"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/api/handler"
	"github.com/ayo6706/lottery-wallet/internal/api/middleware"
	"github.com/ayo6706/lottery-wallet/internal/api/openapi"
	"github.com/ayo6706/lottery-wallet/internal/config"
	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/idempotency"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Services bundles the domain services the HTTP layer fronts.
type Services struct {
	Identity    *service.IdentityService
	Accounts    *service.AccountService
	Ledger      *service.LedgerService
	Transfers   *service.TransferService
	Bets        *service.BetService
	Draws       *service.DrawService
	Settlement  *service.SettlementService
	Withdrawals *service.WithdrawService
	Multipliers *service.MultiplierService
	Webhooks    *service.DrawWebhookService
}

// Deps is everything the router needs. Idempotency, Activity, Feed and the
// health checks are optional.
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Services    Services
	Idempotency *idempotency.Store
	Activity    handler.ActivityReader
	Feed        http.HandlerFunc
	Health      map[string]handler.Pinger
}

type Router struct {
	deps Deps
}

func NewRouter(deps Deps) *Router {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config == nil {
		deps.Config = &config.Config{}
	}
	return &Router{deps: deps}
}

func (api *Router) Routes() chi.Router {
	cfg := api.deps.Config
	svc := api.deps.Services
	logger := api.deps.Logger

	users := handler.NewUserHandler(svc.Identity)
	auth := handler.NewAuthHandler(svc.Identity, middleware.DefaultTokenTTL)
	accounts := handler.NewAccountHandler(svc.Accounts, svc.Ledger, api.deps.Activity)
	transfers := handler.NewTransferHandler(svc.Transfers)
	bets := handler.NewBetHandler(svc.Bets)
	draws := handler.NewDrawHandler(svc.Draws, svc.Settlement)
	withdrawals := handler.NewWithdrawHandler(svc.Withdrawals, svc.Identity)
	multipliers := handler.NewMultiplierHandler(svc.Multipliers)
	webhooks := handler.NewWebhookHandler(svc.Webhooks)
	health := handler.NewHealthHandler(api.deps.Health)

	idempotent := middleware.IdempotencyMiddleware(api.deps.Idempotency, logger)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(logger))

	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", openapi.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	if api.deps.Feed != nil {
		r.Get("/v1/ws/draws", api.deps.Feed)
	}

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))
		r.Use(rateLimit(middleware.PublicRateLimiter, cfg.PublicRateLimitRPS))

		r.With(middleware.OptionalAuth).Post("/v1/users", users.CreateUser)
		r.Post("/v1/auth/login", auth.Login)
		r.Post("/v1/webhooks/draws", webhooks.HandleDrawWebhook)
		r.Get("/v1/draws/current", draws.CurrentDraw)
		r.Get("/v1/draws/history", draws.History)
		r.Get("/v1/draws/history/{id}", draws.HistoryEntry)
		r.Get("/v1/multipliers", multipliers.List)
	})

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))
		r.Use(middleware.AuthMiddleware)
		r.Use(rateLimit(middleware.AuthRateLimiter, cfg.AuthRateLimitRPS))

		r.With(idempotent).Post("/v1/accounts", accounts.OpenAccount)
		r.Get("/v1/accounts/{userID}", accounts.GetAccount)
		r.Get("/v1/accounts/{userID}/statement", accounts.GetStatement)
		r.Get("/v1/accounts/{userID}/activity", accounts.GetActivity)
		r.With(adminOnly, idempotent).Post("/v1/accounts/{userID}/topup", accounts.TopUp)

		r.With(idempotent).Post("/v1/transfers", transfers.Transfer)
		r.With(middleware.RequireRole(domain.RoleAgent), idempotent).Post("/v1/deposits", transfers.Deposit)

		r.With(idempotent).Post("/v1/bets", bets.PlaceBet)
		r.Get("/v1/bets", bets.ListBets)
		r.Get("/v1/bets/{id}", bets.GetBet)

		r.With(adminOnly).Post("/v1/draws", draws.CreateDraw)
		r.With(adminOnly).Post("/v1/draws/{id}/ready", draws.MarkReady)
		r.With(adminOnly).Post("/v1/draws/{id}/settle", draws.Settle)

		r.With(idempotent).Post("/v1/withdrawals", withdrawals.RequestWithdraw)
		r.Get("/v1/withdrawals/{id}", withdrawals.GetWithdraw)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAgent, domain.RoleAdmin))
			r.Post("/v1/withdrawals/{id}/approve", withdrawals.Approve)
			r.Post("/v1/withdrawals/{id}/reject", withdrawals.Reject)
		})
		r.With(middleware.RequireRole(domain.RoleAgent)).Get("/v1/agents/me/withdrawals", withdrawals.ListForAgent)

		r.With(adminOnly).Put("/v1/multipliers", multipliers.Set)
	})

	return r
}

// rateLimit skips the limiter entirely when rps is not positive.
func rateLimit(limiter func(int) func(http.Handler) http.Handler, rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return limiter(rps)
}
