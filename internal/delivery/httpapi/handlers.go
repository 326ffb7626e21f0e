package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"github.com/NasaVasa/oddswatch/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// checkAlerts runs the batch detached from the request: a caller that hangs
// up does not stop a batch that may already have sent emails.
func (s *Server) checkAlerts(c *gin.Context) {
	result, err := s.batch.RunBatch(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		s.logger.Error("cron batch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "CRON_FAILED"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "processed": result.Processed})
}

type alertResponse struct {
	ID              string       `json:"id"`
	UserID          string       `json:"userId"`
	MarketID        string       `json:"marketId"`
	Type            string       `json:"type"`
	Preset          string       `json:"preset,omitempty"`
	Rule            *domain.Rule `json:"rule,omitempty"`
	LastTriggeredAt *time.Time   `json:"lastTriggeredAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}

type quotaResponse struct {
	Used      int64 `json:"used"`
	Limit     int64 `json:"limit"`
	Unlimited bool  `json:"unlimited"`
}

type createAlertRequest struct {
	MarketID string       `json:"marketId" binding:"required"`
	Type     string       `json:"type" binding:"required"`
	Preset   string       `json:"preset"`
	Rule     *domain.Rule `json:"rule"`
}

func toAlertResponse(alert domain.Alert) alertResponse {
	resp := alertResponse{
		ID:              alert.ID,
		UserID:          alert.UserID,
		MarketID:        alert.MarketID,
		Type:            string(alert.Kind()),
		LastTriggeredAt: alert.LastTriggeredAt,
		CreatedAt:       alert.CreatedAt,
	}
	switch payload := alert.Payload.(type) {
	case domain.PresetPayload:
		resp.Preset = string(payload.Preset)
	case domain.CustomPayload:
		rule := payload.Rule
		resp.Rule = &rule
	}
	return resp
}

func (s *Server) listAlerts(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("userID")

	alerts, err := s.alerts.ListAlerts(ctx, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	quota, err := s.alerts.Quota(ctx, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	items := make([]alertResponse, 0, len(alerts))
	for _, alert := range alerts {
		items = append(items, toAlertResponse(alert))
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts": items,
		"quota":  quotaResponse{Used: quota.Used, Limit: quota.Limit, Unlimited: quota.Unlimited},
	})
}

func (s *Server) createAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST"})
		return
	}

	ctx := c.Request.Context()
	userID := c.Param("userID")
	var (
		alert *domain.Alert
		err   error
	)
	switch domain.AlertKind(req.Type) {
	case domain.AlertKindPreset:
		alert, err = s.alerts.CreatePresetAlert(ctx, userID, req.MarketID, domain.Preset(req.Preset))
	case domain.AlertKindCustom:
		if req.Rule == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_ALERT"})
			return
		}
		alert, err = s.alerts.CreateCustomAlert(ctx, userID, req.MarketID, *req.Rule)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_ALERT"})
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAlertResponse(*alert))
}

func (s *Server) deleteAlert(c *gin.Context) {
	if err := s.alerts.DeleteAlert(c.Request.Context(), c.Param("userID"), c.Param("alertID")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAlert):
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_ALERT"})
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "USER_NOT_FOUND"})
	case errors.Is(err, usecase.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "ALERT_NOT_FOUND"})
	case errors.Is(err, domain.ErrMarketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "MARKET_NOT_FOUND"})
	case errors.Is(err, usecase.ErrQuotaExceeded):
		c.JSON(http.StatusForbidden, gin.H{"error": "QUOTA_EXCEEDED"})
	default:
		s.logger.Error("alert api request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL"})
	}
}
