package usecase

import (
	"context"
	"sync"
)

// AlertStateStore remembers the last observation per alert so presets can
// detect deltas between evaluations.
type AlertStateStore interface {
	PreviousVolume(ctx context.Context, alertID string) (float64, bool, error)
	SetVolume(ctx context.Context, alertID string, volume float64) error
	// PreviousFavorite reports found=true with an empty id when "no
	// favorite" was the last observation.
	PreviousFavorite(ctx context.Context, alertID string) (string, bool, error)
	SetFavorite(ctx context.Context, alertID string, outcomeID string) error
}

// StateStoreFactory returns the store used for one batch.
type StateStoreFactory func() AlertStateStore

type alertState struct {
	volume      float64
	hasVolume   bool
	favorite    string
	hasFavorite bool
}

type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]*alertState
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]*alertState)}
}

// NewBatchMemoryStateStore gives every batch a fresh memory store, so deltas
// never carry over between scheduled runs.
func NewBatchMemoryStateStore() StateStoreFactory {
	return func() AlertStateStore { return NewMemoryStateStore() }
}

// SharedStateStore reuses one store for every batch.
func SharedStateStore(store AlertStateStore) StateStoreFactory {
	return func() AlertStateStore { return store }
}

func (s *MemoryStateStore) PreviousVolume(_ context.Context, alertID string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[alertID]
	if !ok || !state.hasVolume {
		return 0, false, nil
	}
	return state.volume, true, nil
}

func (s *MemoryStateStore) SetVolume(_ context.Context, alertID string, volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.getOrCreate(alertID)
	state.volume = volume
	state.hasVolume = true
	return nil
}

func (s *MemoryStateStore) PreviousFavorite(_ context.Context, alertID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[alertID]
	if !ok || !state.hasFavorite {
		return "", false, nil
	}
	return state.favorite, true, nil
}

func (s *MemoryStateStore) SetFavorite(_ context.Context, alertID string, outcomeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.getOrCreate(alertID)
	state.favorite = outcomeID
	state.hasFavorite = true
	return nil
}

func (s *MemoryStateStore) getOrCreate(alertID string) *alertState {
	if state, ok := s.states[alertID]; ok {
		return state
	}
	state := &alertState{}
	s.states[alertID] = state
	return state
}
