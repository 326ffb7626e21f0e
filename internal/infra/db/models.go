package db

import (
	"time"

	"github.com/NasaVasa/oddswatch/internal/domain"
)

// userModel is the profile row owned by the web app; the engine only reads it.
type userModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	Email     string `gorm:"not null"`
	Plan      string `gorm:"not null;default:free"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userModel) TableName() string { return "profiles" }

type alertModel struct {
	ID              string       `gorm:"primaryKey;type:uuid"`
	UserID          string       `gorm:"type:uuid;index;not null"`
	MarketID        string       `gorm:"not null"`
	AlertType       string       `gorm:"not null"`
	Preset          string       `gorm:""`
	Rule            *domain.Rule `gorm:"serializer:json"`
	LastTriggeredAt *time.Time
	CreatedAt       time.Time `gorm:"index"`
}

func (alertModel) TableName() string { return "alerts" }
