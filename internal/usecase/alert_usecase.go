package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NasaVasa/oddswatch/internal/domain"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrAlertNotFound = errors.New("alert not found")
	ErrQuotaExceeded = errors.New("alert quota exceeded")
)

type QuotaStatus struct {
	Used      int64
	Limit     int64
	Unlimited bool
}

func (q QuotaStatus) Remaining() int64 {
	if q.Unlimited {
		return -1
	}
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// AlertUsecase manages a user's alerts. Free-plan users are capped at
// freeLimit alerts; pro users are not capped.
type AlertUsecase struct {
	users     domain.UserRepository
	alerts    domain.AlertRepository
	markets   domain.MarketDataClient
	freeLimit int64
}

func NewAlertUsecase(users domain.UserRepository, alerts domain.AlertRepository, markets domain.MarketDataClient, freeLimit int) *AlertUsecase {
	return &AlertUsecase{users: users, alerts: alerts, markets: markets, freeLimit: int64(freeLimit)}
}

func (u *AlertUsecase) CreatePresetAlert(ctx context.Context, userID, marketID string, preset domain.Preset) (*domain.Alert, error) {
	alert, err := domain.NewPresetAlert(userID, strings.TrimSpace(marketID), preset)
	if err != nil {
		return nil, err
	}
	return u.create(ctx, alert)
}

func (u *AlertUsecase) CreateCustomAlert(ctx context.Context, userID, marketID string, rule domain.Rule) (*domain.Alert, error) {
	alert, err := domain.NewCustomAlert(userID, strings.TrimSpace(marketID), rule)
	if err != nil {
		return nil, err
	}
	return u.create(ctx, alert)
}

func (u *AlertUsecase) create(ctx context.Context, alert domain.Alert) (*domain.Alert, error) {
	quota, err := u.Quota(ctx, alert.UserID)
	if err != nil {
		return nil, err
	}
	if quota.Remaining() == 0 {
		return nil, ErrQuotaExceeded
	}

	if _, err := u.markets.GetMarketData(ctx, alert.MarketID); err != nil {
		return nil, fmt.Errorf("validate market %s: %w", alert.MarketID, err)
	}

	if err := u.alerts.Create(ctx, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

func (u *AlertUsecase) Quota(ctx context.Context, userID string) (QuotaStatus, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return QuotaStatus{}, ErrUserNotFound
		}
		return QuotaStatus{}, err
	}

	used, err := u.alerts.CountByUser(ctx, userID)
	if err != nil {
		return QuotaStatus{}, err
	}
	if user.Plan == domain.PlanPro {
		return QuotaStatus{Used: used, Unlimited: true}, nil
	}
	return QuotaStatus{Used: used, Limit: u.freeLimit}, nil
}

func (u *AlertUsecase) ListAlerts(ctx context.Context, userID string) ([]domain.Alert, error) {
	if _, err := u.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u.alerts.ListByUser(ctx, userID)
}

func (u *AlertUsecase) DeleteAlert(ctx context.Context, userID, alertID string) error {
	if err := u.alerts.Delete(ctx, userID, alertID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrAlertNotFound
		}
		return err
	}
	return nil
}
