package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type scriptedRunner struct {
	errs []error
	call int
}

func (r *scriptedRunner) RunBatch(context.Context) (BatchResult, error) {
	err := r.errs[r.call]
	r.call++
	if err != nil {
		return BatchResult{}, err
	}
	return BatchResult{Processed: r.call}, nil
}

type recordingNotifier struct {
	failures   []error
	recoveries []int
}

func (n *recordingNotifier) NotifyFailure(_ context.Context, err error) error {
	n.failures = append(n.failures, err)
	return nil
}

func (n *recordingNotifier) NotifyRecovery(_ context.Context, failures int) error {
	n.recoveries = append(n.recoveries, failures)
	return errBoom
}

func TestBatchTracker_NotifiesOncePerStreak(t *testing.T) {
	ctx := context.Background()
	runner := &scriptedRunner{errs: []error{nil, errBoom, errBoom, errBoom, nil, nil, errBoom}}
	notifier := &recordingNotifier{}
	tracker := NewBatchTracker(runner, notifier, zaptest.NewLogger(t))
	tracker.now = func() time.Time { return fixedNow }

	for range runner.errs {
		_, _ = tracker.RunBatch(ctx)
	}

	assert.Len(t, notifier.failures, 2)
	assert.Equal(t, []int{3}, notifier.recoveries)

	status := tracker.Status()
	assert.Equal(t, 7, status.Runs)
	assert.Equal(t, 1, status.ConsecutiveFailures)
	assert.Equal(t, "boom", status.LastError)
	assert.Equal(t, fixedNow, status.LastRunAt)
}

func TestBatchTracker_WithoutNotifier(t *testing.T) {
	runner := &scriptedRunner{errs: []error{errBoom, nil}}
	tracker := NewBatchTracker(runner, nil, zaptest.NewLogger(t))

	_, err := tracker.RunBatch(context.Background())
	assert.ErrorIs(t, err, errBoom)
	result, err := tracker.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Zero(t, tracker.Status().ConsecutiveFailures)
	assert.Empty(t, tracker.Status().LastError)
}
