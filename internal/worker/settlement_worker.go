package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/observability"
	"go.uber.org/zap"
)

// ReadySettler settles every draw that has been marked ready.
type ReadySettler interface {
	SettleReady(ctx context.Context) (int, error)
}

// SettlementWorker polls for ready draws and settles them. Running several
// instances is safe: each bet is claimed by a conditional update and the
// draw is retired under a row lock.
type SettlementWorker struct {
	settler      ReadySettler
	pollInterval time.Duration
	stopCh       chan struct{}
	stopOnce     sync.Once
}

func NewSettlementWorker(settler ReadySettler) *SettlementWorker {
	return &SettlementWorker{
		settler:      settler,
		pollInterval: 15 * time.Second,
		stopCh:       make(chan struct{}),
	}
}

func (w *SettlementWorker) WithPollInterval(interval time.Duration) *SettlementWorker {
	if interval > 0 {
		w.pollInterval = interval
	}
	return w
}

// Start blocks until ctx is canceled or Stop is called.
func (w *SettlementWorker) Start(ctx context.Context) {
	zap.L().Info("settlement worker starting", zap.Duration("poll_interval", w.pollInterval))
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("settlement worker context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("settlement worker stop signal received")
			return
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				zap.L().Error("settlement run failed", zap.Error(err))
			}
		}
	}
}

func (w *SettlementWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *SettlementWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

// ProcessOnce settles whatever is ready right now.
func (w *SettlementWorker) ProcessOnce(ctx context.Context) error {
	n, err := w.settler.SettleReady(ctx)
	if err != nil {
		observability.IncrementWorkerRun("settlement", "failed")
		return err
	}
	observability.IncrementWorkerRun("settlement", "success")
	if n > 0 {
		zap.L().Info("settlement worker settled draws", zap.Int("draws", n))
	}
	return nil
}

func (w *SettlementWorker) String() string {
	return fmt.Sprintf("SettlementWorker(interval=%v)", w.pollInterval)
}
