package app

import (
	"context"
	"fmt"
	"time"

	"github.com/NasaVasa/oddswatch/internal/config"
	"github.com/NasaVasa/oddswatch/internal/delivery/httpapi"
	"github.com/NasaVasa/oddswatch/internal/delivery/telegram"
	"github.com/NasaVasa/oddswatch/internal/infra/db"
	"github.com/NasaVasa/oddswatch/internal/infra/log"
	"github.com/NasaVasa/oddswatch/internal/infra/mail"
	"github.com/NasaVasa/oddswatch/internal/infra/polymarket"
	"github.com/NasaVasa/oddswatch/internal/infra/state"
	"github.com/NasaVasa/oddswatch/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout     = 5 * time.Second
	telegramPollTimeout = 60
)

type App struct {
	server       *httpapi.Server
	tracker      *usecase.BatchTracker
	bot          *telegram.Bot
	cronInterval time.Duration
	logger       *zap.Logger
	cleanupFns   []func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &App{cronInterval: cfg.CronInterval, logger: logger}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.cleanupFns = append(a.cleanupFns, func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	newState, err := a.stateFactory(ctx, cfg)
	if err != nil {
		a.Shutdown()
		return nil, err
	}

	userRepo := db.NewUserRepository(dbConn)
	alertRepo := db.NewAlertRepository(dbConn)
	gammaClient := polymarket.NewGammaClient(cfg.PolymarketGammaBaseURL, cfg.PolymarketGammaTimeout, logger.Named("gamma"))
	mailer := mail.NewResendMailer(cfg.ResendAPIKey, logger.Named("mail"))

	alerting := usecase.NewAlertingUsecase(
		alertRepo,
		userRepo,
		gammaClient,
		mailer,
		newState,
		usecase.NewNotificationComposer(cfg.PolymarketSiteURL),
		usecase.AlertingConfig{From: cfg.EmailFrom, IsolateFetchFailures: cfg.IsolateFetchFailures},
		logger.Named("alerting"),
	)
	alertUC := usecase.NewAlertUsecase(userRepo, alertRepo, gammaClient, cfg.FreeAlertLimit)

	if cfg.TelegramEnabled() {
		botAPI, err := telegram.NewAPI(cfg.TelegramBotToken)
		if err != nil {
			a.Shutdown()
			return nil, fmt.Errorf("telegram: %w", err)
		}
		tgLogger := logger.Named("telegram")
		a.tracker = usecase.NewBatchTracker(alerting, telegram.NewOpsNotifier(botAPI, cfg.TelegramChatID, tgLogger), logger)
		handlers := telegram.NewHandlers(botAPI, cfg.TelegramChatID, a.tracker, gammaClient, tgLogger)
		a.bot = telegram.NewBot(botAPI, handlers, telegramPollTimeout)
	} else {
		a.tracker = usecase.NewBatchTracker(alerting, nil, logger)
	}

	a.server = httpapi.NewServer(cfg.HTTPAddr, cfg.CronSecret, a.tracker, alertUC, logger.Named("http"))
	return a, nil
}

func (a *App) stateFactory(ctx context.Context, cfg config.Config) (usecase.StateStoreFactory, error) {
	if cfg.AlertStateBackend != config.StateBackendRedis {
		return usecase.NewBatchMemoryStateStore(), nil
	}
	client, err := state.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	a.cleanupFns = append(a.cleanupFns, client.Close)
	return usecase.SharedStateStore(state.NewRedisStateStore(client, "", cfg.AlertStateTTL)), nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("oddswatch service starting",
		zap.Duration("cron_interval", a.cronInterval),
		zap.Bool("telegram", a.bot != nil),
	)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(a.server.ListenAndServe)
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	if a.cronInterval > 0 {
		group.Go(func() error {
			a.runTicker(ctx)
			return nil
		})
	}
	if a.bot != nil {
		group.Go(func() error {
			return a.bot.Start(ctx)
		})
	}

	a.logger.Info("oddswatch service started")
	return group.Wait()
}

// runTicker runs a batch every cronInterval until ctx is done. A batch that
// has started finishes even if ctx is cancelled meanwhile. Failures are
// already logged and tracked, so the loop only keeps going.
func (a *App) runTicker(ctx context.Context) {
	ticker := time.NewTicker(a.cronInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = a.tracker.RunBatch(context.WithoutCancel(ctx))
		}
	}
}

func (a *App) Shutdown() {
	a.logger.Info("oddswatch service shutting down")
	for i := len(a.cleanupFns) - 1; i >= 0; i-- {
		if err := a.cleanupFns[i](); err != nil {
			a.logger.Warn("cleanup failed", zap.Error(err))
		}
	}
	a.cleanupFns = nil
	_ = a.logger.Sync()
}
