package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"github.com/NasaVasa/oddswatch/internal/usecase"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type BatchRunner interface {
	RunBatch(ctx context.Context) (usecase.BatchResult, error)
}

type AlertManager interface {
	CreatePresetAlert(ctx context.Context, userID, marketID string, preset domain.Preset) (*domain.Alert, error)
	CreateCustomAlert(ctx context.Context, userID, marketID string, rule domain.Rule) (*domain.Alert, error)
	ListAlerts(ctx context.Context, userID string) ([]domain.Alert, error)
	DeleteAlert(ctx context.Context, userID, alertID string) error
	Quota(ctx context.Context, userID string) (usecase.QuotaStatus, error)
}

// Server exposes the cron trigger and the alert management API. Every /api
// route requires the shared bearer secret.
type Server struct {
	router *gin.Engine
	http   *http.Server
	batch  BatchRunner
	alerts AlertManager
	secret string
	logger *zap.Logger
}

func NewServer(addr, secret string, batch BatchRunner, alerts AlertManager, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	s := &Server{
		router: router,
		batch:  batch,
		alerts: alerts,
		secret: secret,
		logger: logger,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api", s.requireBearer())
	api.POST("/cron/check-alerts", s.checkAlerts)

	alerts := api.Group("/users/:userID/alerts")
	alerts.GET("", s.listAlerts)
	alerts.POST("", s.createAlert)
	alerts.DELETE("/:alertID", s.deleteAlert)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
