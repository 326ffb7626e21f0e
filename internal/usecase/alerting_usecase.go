package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"go.uber.org/zap"
)

type AlertingConfig struct {
	// From is the sender address on alert emails.
	From string
	// IsolateFetchFailures skips an alert whose market cannot be fetched
	// instead of aborting the rest of the batch.
	IsolateFetchFailures bool
}

type BatchResult struct {
	Processed int
	Evaluated int
	Triggered int
	Skipped   int
}

// AlertingUsecase evaluates every stored alert against live market data and
// emails the owners of alerts that fire.
type AlertingUsecase struct {
	alerts   domain.AlertRepository
	users    domain.UserRepository
	markets  domain.MarketDataClient
	mailer   domain.Mailer
	newState StateStoreFactory
	composer NotificationComposer
	cfg      AlertingConfig
	logger   *zap.Logger
	now      func() time.Time

	// one batch at a time
	mu sync.Mutex
}

func NewAlertingUsecase(
	alerts domain.AlertRepository,
	users domain.UserRepository,
	markets domain.MarketDataClient,
	mailer domain.Mailer,
	newState StateStoreFactory,
	composer NotificationComposer,
	cfg AlertingConfig,
	logger *zap.Logger,
) *AlertingUsecase {
	if newState == nil {
		newState = NewBatchMemoryStateStore()
	}
	return &AlertingUsecase{
		alerts:   alerts,
		users:    users,
		markets:  markets,
		mailer:   mailer,
		newState: newState,
		composer: composer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// batchScope holds the caches and delta state that live for one batch.
type batchScope struct {
	snapshots  *SnapshotCache
	recipients *RecipientResolver
	evaluator  *Evaluator
	result     BatchResult
}

func (u *AlertingUsecase) newBatchScope() *batchScope {
	return &batchScope{
		snapshots:  NewSnapshotCache(u.markets),
		recipients: NewRecipientResolver(u.users, u.logger),
		evaluator:  NewEvaluator(u.newState()),
	}
}

func (u *AlertingUsecase) RunBatch(ctx context.Context) (BatchResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	start := time.Now()
	result, err := u.runBatch(ctx)
	batchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		batchRunsTotal.WithLabelValues("failed").Inc()
		u.logger.Error("alert batch failed",
			zap.Int("processed", result.Processed),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return result, err
	}

	batchRunsTotal.WithLabelValues("success").Inc()
	u.logger.Info("alert batch complete",
		zap.Int("evaluated", result.Evaluated),
		zap.Int("triggered", result.Triggered),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (u *AlertingUsecase) runBatch(ctx context.Context) (BatchResult, error) {
	alerts, err := u.alerts.ListAll(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("load alerts: %w", err)
	}
	if len(alerts) == 0 {
		u.logger.Info("no alerts to evaluate")
		return BatchResult{}, nil
	}

	u.logger.Debug("alert batch start", zap.Int("alert_count", len(alerts)))
	scope := u.newBatchScope()
	for _, alert := range alerts {
		if err := u.processAlert(ctx, scope, alert); err != nil {
			return scope.result, err
		}
	}
	return scope.result, nil
}

// processAlert only returns an error when the whole batch must stop.
func (u *AlertingUsecase) processAlert(ctx context.Context, scope *batchScope, alert domain.Alert) error {
	logger := u.logger.With(zap.String("alert_id", alert.ID), zap.String("market_id", alert.MarketID))

	snapshot, err := scope.snapshots.Fetch(ctx, alert.MarketID)
	if err != nil {
		if !u.cfg.IsolateFetchFailures {
			return fmt.Errorf("fetch market %s for alert %s: %w", alert.MarketID, alert.ID, err)
		}
		logger.Warn("failed to fetch market, skipping alert", zap.Error(err))
		scope.skip("fetch_failed")
		return nil
	}

	scope.result.Evaluated++
	alertsEvaluatedTotal.Inc()
	triggered, err := scope.evaluator.EvaluateAlert(ctx, alert, *snapshot)
	if err != nil {
		logger.Warn("failed to evaluate alert", zap.Error(err))
		scope.skip("evaluation_failed")
		return nil
	}
	if !triggered {
		return nil
	}
	scope.result.Triggered++
	alertsTriggeredTotal.WithLabelValues(triggerLabel(alertLabel(alert))).Inc()

	to, ok := scope.recipients.Resolve(ctx, alert.UserID)
	if !ok {
		logger.Info("no recipient for triggered alert", zap.String("user_id", alert.UserID))
		scope.skip("no_recipient")
		return nil
	}

	email := domain.Email{
		From:    u.cfg.From,
		To:      to,
		Subject: u.composer.Subject(alert, *snapshot),
		HTML:    u.composer.Body(alert, *snapshot),
	}
	if err := u.mailer.Send(ctx, email); err != nil {
		logger.Error("failed to send alert email", zap.Error(err))
		notificationsTotal.WithLabelValues("failed").Inc()
		scope.skip("send_failed")
		return nil
	}
	notificationsTotal.WithLabelValues("sent").Inc()

	if err := u.alerts.MarkTriggered(ctx, alert.ID, u.now()); err != nil {
		// the email is already out, so the alert still counts
		logger.Error("failed to record trigger time", zap.Error(err))
		markTriggeredFailuresTotal.Inc()
	}
	scope.result.Processed++
	logger.Info("alert notification sent", zap.String("kind", alertLabel(alert)))
	return nil
}

func (s *batchScope) skip(reason string) {
	s.result.Skipped++
	alertsSkippedTotal.WithLabelValues(reason).Inc()
}

func alertLabel(alert domain.Alert) string {
	if preset, ok := alert.Payload.(domain.PresetPayload); ok {
		return string(preset.Preset)
	}
	return string(alert.Kind())
}
