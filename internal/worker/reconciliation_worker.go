package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/observability"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"go.uber.org/zap"
)

// Reconciler checks that ledgers explain balances.
type Reconciler interface {
	Run(ctx context.Context) (*service.ReconciliationReport, error)
}

// ReconciliationWorker runs the ledger completeness check once at startup
// and then on every interval. Divergence is logged and counted; balances are
// never corrected from here.
type ReconciliationWorker struct {
	reconciler Reconciler
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

func NewReconciliationWorker(reconciler Reconciler) *ReconciliationWorker {
	return &ReconciliationWorker{
		reconciler: reconciler,
		interval:   24 * time.Hour,
		stopCh:     make(chan struct{}),
	}
}

func (w *ReconciliationWorker) WithInterval(interval time.Duration) *ReconciliationWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Start blocks until ctx is canceled or Stop is called.
func (w *ReconciliationWorker) Start(ctx context.Context) {
	zap.L().Info("reconciliation worker starting", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessOnce(ctx); err != nil {
			zap.L().Error("reconciliation run failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
		}
	}
}

func (w *ReconciliationWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *ReconciliationWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

// ProcessOnce runs one full pass.
func (w *ReconciliationWorker) ProcessOnce(ctx context.Context) (*service.ReconciliationReport, error) {
	started := time.Now()
	report, err := w.reconciler.Run(ctx)
	if err != nil {
		observability.IncrementWorkerRun("reconciliation", "failed")
		return nil, err
	}

	outcome := "success"
	if len(report.Mismatched) > 0 {
		outcome = "mismatch"
	}
	observability.IncrementWorkerRun("reconciliation", outcome)
	zap.L().Info("reconciliation run finished",
		zap.Int("accounts", report.Checked),
		zap.Int("mismatched", len(report.Mismatched)),
		zap.Duration("took", time.Since(started)),
	)
	return report, nil
}
