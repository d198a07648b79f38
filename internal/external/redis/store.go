package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"paygate/internal/controller/apperror"
	"paygate/internal/domain/checkout"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "checkout:idem:"
	// inProgressPrefix never parses as a JSON record.
	inProgressPrefix = "in_progress:"

	DefaultInProgressTTL = 30 * time.Second
	DefaultCompletedTTL  = 24 * time.Hour
)

// record is the completed entry: the fingerprint the key was claimed with and
// the full session.
type record struct {
	Fingerprint string           `json:"fingerprint"`
	Session     checkout.Session `json:"session"`
}

// kv is the subset of redis.Cmdable the store needs.
type kv interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyStore is a checkout.ReplayStore on Redis. Completed entries hold
// the full session, client secret included, until the TTL expires.
type IdempotencyStore struct {
	client        kv
	inProgressTTL time.Duration
	completedTTL  time.Duration
}

type Option func(*IdempotencyStore)

func InProgressTTL(d time.Duration) Option {
	return func(s *IdempotencyStore) { s.inProgressTTL = d }
}

func CompletedTTL(d time.Duration) Option {
	return func(s *IdempotencyStore) { s.completedTTL = d }
}

func NewIdempotencyStore(client redis.Cmdable, opts ...Option) *IdempotencyStore {
	return newStore(client, opts...)
}

func newStore(client kv, opts ...Option) *IdempotencyStore {
	s := &IdempotencyStore{
		client:        client,
		inProgressTTL: DefaultInProgressTTL,
		completedTTL:  DefaultCompletedTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// redisKey scopes the key by payer; the payer id is escaped so it cannot
// contain the separator.
func redisKey(k checkout.ReplayKey) string {
	return keyPrefix + url.QueryEscape(k.PayerID) + ":" + k.Key
}

func (s *IdempotencyStore) Claim(ctx context.Context, key checkout.ReplayKey) (*checkout.Session, error) {
	k := redisKey(key)

	// a second pass covers an entry that expired between SETNX and GET
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, inProgressPrefix+key.Fingerprint, s.inProgressTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return nil, nil
		}

		val, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}

		if fp, running := strings.CutPrefix(val, inProgressPrefix); running {
			if fp != key.Fingerprint {
				return nil, apperror.ErrIdempotencyKeyReused
			}
			return nil, apperror.ErrIdempotencyInProgress
		}

		var rec record
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			return nil, fmt.Errorf("decode stored session: %w", err)
		}
		if rec.Fingerprint != key.Fingerprint {
			return nil, apperror.ErrIdempotencyKeyReused
		}
		return &rec.Session, nil
	}
	return nil, apperror.ErrIdempotencyInProgress
}

func (s *IdempotencyStore) Complete(ctx context.Context, key checkout.ReplayKey, session checkout.Session) error {
	data, err := json.Marshal(record{Fingerprint: key.Fingerprint, Session: session})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(key), data, s.completedTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key checkout.ReplayKey) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
