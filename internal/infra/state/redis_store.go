package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldVolume   = "volume"
	fieldFavorite = "favorite"
)

// RedisStateStore keeps per-alert delta state in one hash per alert, so
// whale and flip presets see history across scheduled runs.
type RedisStateStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStateStore expires an alert's state ttl after its last write; a
// zero ttl keeps it forever.
func NewRedisStateStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStateStore {
	if prefix == "" {
		prefix = "oddswatch:alert_state"
	}
	return &RedisStateStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStateStore) key(alertID string) string {
	return s.prefix + ":" + alertID
}

func (s *RedisStateStore) PreviousVolume(ctx context.Context, alertID string) (float64, bool, error) {
	raw, found, err := s.get(ctx, alertID, fieldVolume)
	if err != nil || !found {
		return 0, false, err
	}
	volume, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse stored volume for %s: %w", alertID, err)
	}
	return volume, true, nil
}

func (s *RedisStateStore) SetVolume(ctx context.Context, alertID string, volume float64) error {
	return s.set(ctx, alertID, fieldVolume, strconv.FormatFloat(volume, 'f', -1, 64))
}

func (s *RedisStateStore) PreviousFavorite(ctx context.Context, alertID string) (string, bool, error) {
	return s.get(ctx, alertID, fieldFavorite)
}

func (s *RedisStateStore) SetFavorite(ctx context.Context, alertID string, outcomeID string) error {
	return s.set(ctx, alertID, fieldFavorite, outcomeID)
}

func (s *RedisStateStore) get(ctx context.Context, alertID, field string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.key(alertID), field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", field, err)
	}
	return value, true, nil
}

func (s *RedisStateStore) set(ctx context.Context, alertID, field, value string) error {
	key := s.key(alertID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", field, err)
	}
	return nil
}
