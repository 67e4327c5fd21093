package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
)

const (
	sessionKeyPrefix = "quoting:session:"
	dedupeKeyPrefix  = "quoting:dedupe:"
)

// RedisRepository stores sessions as JSON values with the conversation
// TTL, so expiry needs no sweeper.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository creates the Redis-backed session store.
func NewRedisRepository(client *redis.Client, cfg config.SessionConfig) *RedisRepository {
	return &RedisRepository{client: client, ttl: cfg.GetSessionTTL()}
}

var _ Repository = (*RedisRepository)(nil)

func (r *RedisRepository) Get(ctx context.Context, userID string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", userID, err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", userID, err)
	}
	return &s, nil
}

func (r *RedisRepository) Save(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.UserID, err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.UserID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", s.UserID, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", userID, err)
	}
	return nil
}

// RedisDeduper implements the dedupe window with SETNX, so the check and
// the mark are one atomic operation.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates the Redis-backed message deduper.
func NewRedisDeduper(client *redis.Client, cfg config.SessionConfig) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: cfg.GetDedupeTTL()}
}

var _ Deduper = (*RedisDeduper)(nil)

func (d *RedisDeduper) MarkProcessed(ctx context.Context, messageID string) (bool, error) {
	first, err := d.client.SetNX(ctx, dedupeKeyPrefix+messageID, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe %s: %w", messageID, err)
	}
	return first, nil
}
