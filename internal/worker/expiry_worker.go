package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Expirer is the queue operation the worker schedules.
type Expirer interface {
	ExpireStaleTickets(ctx context.Context) (int, error)
}

// ExpiryWorker periodically expires tickets that were never scanned.
type ExpiryWorker struct {
	expirer Expirer
	logger  *zap.Logger
	cron    *cron.Cron
	timeout time.Duration

	mu      sync.Mutex
	running bool
}

// NewExpiryWorker schedules the expirer on a cron schedule such as "@every 1m".
func NewExpiryWorker(expirer Expirer, logger *zap.Logger, schedule string) (*ExpiryWorker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &ExpiryWorker{
		expirer: expirer,
		logger:  logger,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		timeout: 30 * time.Second,
	}
	if _, err := w.cron.AddFunc(schedule, w.tick); err != nil {
		return nil, fmt.Errorf("invalid expiry schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start begins scheduling in the background.
func (w *ExpiryWorker) Start() {
	w.logger.Info("expiry worker started")
	w.cron.Start()
}

// Stop halts scheduling and waits for a running pass to finish or ctx to end.
func (w *ExpiryWorker) Stop(ctx context.Context) {
	done := w.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("expiry worker stop timed out")
	}
}

// RunOnce performs one expiry pass.
func (w *ExpiryWorker) RunOnce(ctx context.Context) (int, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return 0, nil
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	return w.expirer.ExpireStaleTickets(ctx)
}

func (w *ExpiryWorker) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	count, err := w.RunOnce(ctx)
	if err != nil {
		w.logger.Error("expiry pass failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.logger.Debug("expiry pass finished", zap.Int("expired", count))
	}
}
