package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	httpDurationHistogram     *prometheus.HistogramVec
	ledgerImbalanceCounter    *prometheus.CounterVec
	idempotencyCounter        *prometheus.CounterVec
	betsPlacedCounter         *prometheus.CounterVec
	multiplierFallbackCounter *prometheus.CounterVec
	settledBetsCounter        *prometheus.CounterVec
	settlementDuration        prometheus.Histogram
	withdrawTransitionCounter *prometheus.CounterVec
	drawFeedClientsGauge      prometheus.Gauge
	workerRunCounter          *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		ledgerImbalanceCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_imbalance_total",
			Help: "Accounts whose ledger sum diverged from their live balance",
		}, []string{"currency"})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		betsPlacedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bets_placed_total",
			Help: "Bets accepted by bet type",
		}, []string{"bet_type"})

		multiplierFallbackCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "multiplier_fallback_total",
			Help: "Bet placements that used the default multiplier table",
		}, []string{"bet_type"})

		settledBetsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bets_settled_total",
			Help: "Settled bets by outcome",
		}, []string{"outcome"})

		settlementDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "draw_settlement_duration_seconds",
			Help:    "Wall time of one draw settlement run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		})

		withdrawTransitionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "withdraw_transitions_total",
			Help: "Withdraw request state transitions",
		}, []string{"status"})

		drawFeedClientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "draw_feed_clients",
			Help: "Connected draw feed websocket clients",
		})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			ledgerImbalanceCounter,
			idempotencyCounter,
			betsPlacedCounter,
			multiplierFallbackCounter,
			settledBetsCounter,
			settlementDuration,
			withdrawTransitionCounter,
			drawFeedClientsGauge,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementLedgerImbalance(currency string) {
	if ledgerImbalanceCounter == nil {
		return
	}
	ledgerImbalanceCounter.WithLabelValues(currency).Inc()
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementBetsPlaced(betType string) {
	if betsPlacedCounter == nil {
		return
	}
	betsPlacedCounter.WithLabelValues(betType).Inc()
}

func IncrementMultiplierFallback(betType string) {
	if multiplierFallbackCounter == nil {
		return
	}
	multiplierFallbackCounter.WithLabelValues(betType).Inc()
}

// ObserveSettlement records one settlement run.
func ObserveSettlement(wins, losses int64, duration time.Duration) {
	if settledBetsCounter == nil {
		return
	}
	settledBetsCounter.WithLabelValues("win").Add(float64(wins))
	settledBetsCounter.WithLabelValues("loss").Add(float64(losses))
	settlementDuration.Observe(duration.Seconds())
}

func IncrementWithdrawTransition(status string) {
	if withdrawTransitionCounter == nil {
		return
	}
	withdrawTransitionCounter.WithLabelValues(status).Inc()
}

func SetDrawFeedClients(n int) {
	if drawFeedClientsGauge == nil {
		return
	}
	drawFeedClientsGauge.Set(float64(n))
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
