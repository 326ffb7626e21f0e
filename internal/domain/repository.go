package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*User, error)
}

type AlertRepository interface {
	ListAll(ctx context.Context) ([]Alert, error)
	ListByUser(ctx context.Context, userID string) ([]Alert, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, alert *Alert) error
	Delete(ctx context.Context, userID string, alertID string) error
	MarkTriggered(ctx context.Context, alertID string, at time.Time) error
}

type MarketDataClient interface {
	GetMarketData(ctx context.Context, marketID string) (*MarketSnapshot, error)
}

type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}
