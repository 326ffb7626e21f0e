package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type recipient struct {
	email string
	ok    bool
}

// RecipientResolver maps alert owners to email addresses for one batch.
// Lookup failures resolve to "no recipient" and are remembered as such.
type RecipientResolver struct {
	users  domain.UserRepository
	logger *zap.Logger
	group  singleflight.Group

	mu       sync.Mutex
	resolved map[string]recipient
}

func NewRecipientResolver(users domain.UserRepository, logger *zap.Logger) *RecipientResolver {
	return &RecipientResolver{users: users, logger: logger, resolved: make(map[string]recipient)}
}

func (r *RecipientResolver) Resolve(ctx context.Context, userID string) (string, bool) {
	if rec, ok := r.lookup(userID); ok {
		return rec.email, rec.ok
	}

	value, _, _ := r.group.Do(userID, func() (any, error) {
		if rec, ok := r.lookup(userID); ok {
			return rec, nil
		}
		rec := r.fetch(ctx, userID)
		r.mu.Lock()
		r.resolved[userID] = rec
		r.mu.Unlock()
		return rec, nil
	})
	rec := value.(recipient)
	return rec.email, rec.ok
}

func (r *RecipientResolver) fetch(ctx context.Context, userID string) recipient {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to resolve alert recipient", zap.String("user_id", userID), zap.Error(err))
		return recipient{}
	}
	email := strings.TrimSpace(user.Email)
	if email == "" {
		r.logger.Warn("alert owner has no email", zap.String("user_id", userID))
		return recipient{}
	}
	return recipient{email: email, ok: true}
}

func (r *RecipientResolver) lookup(userID string) (recipient, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.resolved[userID]
	return rec, ok
}
