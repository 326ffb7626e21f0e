package db

import (
	"context"
	"time"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) ListAll(ctx context.Context) ([]domain.Alert, error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) ListByUser(ctx context.Context, userID string) ([]domain.Alert, error) {
	userID, ok := canonicalID(userID)
	if !ok {
		return []domain.Alert{}, nil
	}
	var models []alertModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	userID, ok := canonicalID(userID)
	if !ok {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&alertModel{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	model := mapAlertToModel(*alert)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	alert.ID = model.ID
	alert.CreatedAt = model.CreatedAt
	return nil
}

func (r *AlertRepository) Delete(ctx context.Context, userID string, alertID string) error {
	userID, userOK := canonicalID(userID)
	alertID, alertOK := canonicalID(alertID)
	if !userOK || !alertOK {
		return domain.ErrNotFound
	}
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", alertID, userID).Delete(&alertModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) MarkTriggered(ctx context.Context, alertID string, at time.Time) error {
	alertID, ok := canonicalID(alertID)
	if !ok {
		return domain.ErrNotFound
	}
	result := r.db.WithContext(ctx).Model(&alertModel{}).Where("id = ?", alertID).Update("last_triggered_at", at.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// canonicalID normalizes a uuid key. Anything else cannot match a row, and
// postgres rejects it outright in a uuid comparison.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func mapAlertsToDomain(models []alertModel) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(models))
	for _, model := range models {
		alerts = append(alerts, domain.Alert{
			ID:              model.ID,
			UserID:          model.UserID,
			MarketID:        model.MarketID,
			Payload:         payloadFromModel(model),
			LastTriggeredAt: model.LastTriggeredAt,
			CreatedAt:       model.CreatedAt,
		})
	}
	return alerts
}

// payloadFromModel returns nil for rows whose type and payload columns
// disagree; such alerts never trigger.
func payloadFromModel(model alertModel) domain.AlertPayload {
	switch domain.AlertKind(model.AlertType) {
	case domain.AlertKindPreset:
		if model.Preset == "" {
			return nil
		}
		return domain.PresetPayload{Preset: domain.Preset(model.Preset)}
	case domain.AlertKindCustom:
		if model.Rule == nil {
			return nil
		}
		return domain.CustomPayload{Rule: *model.Rule}
	default:
		return nil
	}
}

func mapAlertToModel(alert domain.Alert) alertModel {
	model := alertModel{
		ID:              alert.ID,
		UserID:          alert.UserID,
		MarketID:        alert.MarketID,
		AlertType:       string(alert.Kind()),
		LastTriggeredAt: alert.LastTriggeredAt,
		CreatedAt:       alert.CreatedAt,
	}
	switch payload := alert.Payload.(type) {
	case domain.PresetPayload:
		model.Preset = string(payload.Preset)
	case domain.CustomPayload:
		rule := payload.Rule
		model.Rule = &rule
	}
	return model
}
