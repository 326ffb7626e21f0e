package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NasaVasa/oddswatch/internal/domain"
)

var errBoom = errors.New("boom")

type fakeMarkets struct {
	mu        sync.Mutex
	snapshots map[string]domain.MarketSnapshot
	errs      map[string]error
	calls     map[string]int
	gate      chan struct{}
}

func newFakeMarkets(snapshots ...domain.MarketSnapshot) *fakeMarkets {
	f := &fakeMarkets{
		snapshots: make(map[string]domain.MarketSnapshot),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
	for _, s := range snapshots {
		f.snapshots[s.MarketID] = s
	}
	return f
}

func (f *fakeMarkets) GetMarketData(_ context.Context, marketID string) (*domain.MarketSnapshot, error) {
	f.mu.Lock()
	f.calls[marketID]++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[marketID]; ok {
		return nil, err
	}
	snapshot, ok := f.snapshots[marketID]
	if !ok {
		return nil, domain.ErrMarketNotFound
	}
	return &snapshot, nil
}

func (f *fakeMarkets) callCount(marketID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[marketID]
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	errs  map[string]error
	calls map[string]int
}

func newFakeUsers(users ...domain.User) *fakeUsers {
	f := &fakeUsers{
		users: make(map[string]*domain.User),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
	for i := range users {
		f.users[users[i].ID] = &users[i]
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[userID]++
	if err, ok := f.errs[userID]; ok {
		return nil, err
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

type markCall struct {
	AlertID string
	At      time.Time
}

type fakeAlerts struct {
	alerts    []domain.Alert
	listErr   error
	markErr   error
	marked    []markCall
	deleted   []string
	nextID    int
	createErr error
}

func (f *fakeAlerts) ListAll(context.Context) ([]domain.Alert, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Alert(nil), f.alerts...), nil
}

func (f *fakeAlerts) ListByUser(_ context.Context, userID string) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, a := range f.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlerts) CountByUser(ctx context.Context, userID string) (int64, error) {
	alerts, _ := f.ListByUser(ctx, userID)
	return int64(len(alerts)), nil
}

func (f *fakeAlerts) Create(_ context.Context, alert *domain.Alert) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	alert.ID = fmt.Sprintf("alert-%d", f.nextID)
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeAlerts) Delete(_ context.Context, userID, alertID string) error {
	for i, a := range f.alerts {
		if a.ID == alertID && a.UserID == userID {
			f.alerts = append(f.alerts[:i], f.alerts[i+1:]...)
			f.deleted = append(f.deleted, alertID)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeAlerts) MarkTriggered(_ context.Context, alertID string, at time.Time) error {
	f.marked = append(f.marked, markCall{AlertID: alertID, At: at})
	return f.markErr
}

type fakeMailer struct {
	sent []domain.Email
	fail map[string]error
}

func (f *fakeMailer) Send(_ context.Context, email domain.Email) error {
	if err, ok := f.fail[email.To]; ok {
		return err
	}
	f.sent = append(f.sent, email)
	return nil
}

type failingStateStore struct{}

func (failingStateStore) PreviousVolume(context.Context, string) (float64, bool, error) {
	return 0, false, errBoom
}
func (failingStateStore) SetVolume(context.Context, string, float64) error { return errBoom }
func (failingStateStore) PreviousFavorite(context.Context, string) (string, bool, error) {
	return "", false, errBoom
}
func (failingStateStore) SetFavorite(context.Context, string, string) error { return errBoom }

func presetAlert(id, userID, marketID string, preset domain.Preset) domain.Alert {
	return domain.Alert{ID: id, UserID: userID, MarketID: marketID, Payload: domain.PresetPayload{Preset: preset}}
}

func customAlert(id, userID, marketID string, combinator domain.Combinator, conds ...domain.Condition) domain.Alert {
	return domain.Alert{
		ID:       id,
		UserID:   userID,
		MarketID: marketID,
		Payload:  domain.CustomPayload{Rule: domain.Rule{Combinator: combinator, Conditions: conds}},
	}
}

// binarySnapshot builds a Yes/No market where Yes carries more volume and is
// therefore the primary outcome.
func binarySnapshot(marketID string, totalVolume, yesPrice float64) domain.MarketSnapshot {
	return domain.NewMarketSnapshot(marketID, "Market "+marketID, totalVolume, []domain.Outcome{
		{ID: marketID + "-yes", Label: "Yes", Price: yesPrice, Volume: totalVolume * 0.6},
		{ID: marketID + "-no", Label: "No", Price: 1 - yesPrice, Volume: totalVolume * 0.4},
	})
}
