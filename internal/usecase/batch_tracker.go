package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type BatchRunner interface {
	RunBatch(ctx context.Context) (BatchResult, error)
}

// OpsNotifier tells operators about failing and recovered batches.
type OpsNotifier interface {
	NotifyFailure(ctx context.Context, err error) error
	NotifyRecovery(ctx context.Context, failures int) error
}

type BatchStatus struct {
	Runs                int
	LastRunAt           time.Time
	LastResult          BatchResult
	LastError           string
	ConsecutiveFailures int
}

// BatchTracker records the outcome of every batch. Operators hear about the
// first failure of a streak and about the recovery that ends it, not about
// every failed run in between.
type BatchTracker struct {
	runner   BatchRunner
	notifier OpsNotifier
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	status BatchStatus
}

// NewBatchTracker accepts a nil notifier.
func NewBatchTracker(runner BatchRunner, notifier OpsNotifier, logger *zap.Logger) *BatchTracker {
	return &BatchTracker{runner: runner, notifier: notifier, logger: logger, now: time.Now}
}

func (t *BatchTracker) RunBatch(ctx context.Context) (BatchResult, error) {
	result, err := t.runner.RunBatch(ctx)

	t.mu.Lock()
	t.status.Runs++
	t.status.LastRunAt = t.now()
	t.status.LastResult = result
	failures := t.status.ConsecutiveFailures
	if err != nil {
		t.status.LastError = err.Error()
		t.status.ConsecutiveFailures++
	} else {
		t.status.LastError = ""
		t.status.ConsecutiveFailures = 0
	}
	streak := t.status.ConsecutiveFailures
	t.mu.Unlock()

	if t.notifier == nil {
		return result, err
	}
	if err != nil && streak == 1 {
		if notifyErr := t.notifier.NotifyFailure(ctx, err); notifyErr != nil {
			t.logger.Warn("failed to send failure notification", zap.Error(notifyErr))
		}
	}
	if err == nil && failures > 0 {
		if notifyErr := t.notifier.NotifyRecovery(ctx, failures); notifyErr != nil {
			t.logger.Warn("failed to send recovery notification", zap.Error(notifyErr))
		}
	}
	return result, err
}

func (t *BatchTracker) Status() BatchStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}
