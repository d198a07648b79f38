package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"paygate/internal/controller/apperror"
	"paygate/internal/domain/checkout"
	"paygate/internal/domain/payment"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryKV ignores TTLs.
type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memoryKV) SetNX(_ context.Context, key string, value interface{}, exp time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewBoolResult(false, m.err)
	}
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	m.ttl[key] = exp
	return redis.NewBoolResult(true, nil)
}

func (m *memoryKV) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryKV) Set(_ context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func replayKey(payer, key, fingerprint string) checkout.ReplayKey {
	return checkout.ReplayKey{PayerID: payer, Key: key, Fingerprint: fingerprint}
}

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	store := newStore(kv)
	key := replayKey("user-1", "key-1", "fp-a")

	// given a fresh key
	prior, err := store.Claim(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, prior)
	assert.Equal(t, DefaultInProgressTTL, kv.ttl["checkout:idem:user-1:key-1"])

	// when a concurrent request arrives
	_, err = store.Claim(ctx, key)
	assert.ErrorIs(t, err, apperror.ErrIdempotencyInProgress)

	// then completion makes it replayable
	session := checkout.Session{Reference: "stp_general_x", Provider: payment.ProviderStripe, SessionID: "pi_1", ClientSecret: "pi_1_secret"}
	require.NoError(t, store.Complete(ctx, key, session))
	assert.Equal(t, DefaultCompletedTTL, kv.ttl["checkout:idem:user-1:key-1"])

	prior, err = store.Claim(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, "stp_general_x", prior.Reference)
	assert.Equal(t, "pi_1_secret", prior.ClientSecret)
}

func TestIdempotencyStore_RejectsReuseWithDifferentRequest(t *testing.T) {
	ctx := context.Background()
	session := checkout.Session{Reference: "stp_general_x", SessionID: "pi_1", ClientSecret: "pi_1_secret"}

	t.Run("completed key", func(t *testing.T) {
		store := newStore(newMemoryKV())
		_, err := store.Claim(ctx, replayKey("user-1", "key-1", "fp-a"))
		require.NoError(t, err)
		require.NoError(t, store.Complete(ctx, replayKey("user-1", "key-1", "fp-a"), session))

		prior, err := store.Claim(ctx, replayKey("user-1", "key-1", "fp-b"))

		assert.ErrorIs(t, err, apperror.ErrIdempotencyKeyReused)
		assert.Nil(t, prior)
	})

	t.Run("in-progress key", func(t *testing.T) {
		store := newStore(newMemoryKV())
		_, err := store.Claim(ctx, replayKey("user-1", "key-1", "fp-a"))
		require.NoError(t, err)

		_, err = store.Claim(ctx, replayKey("user-1", "key-1", "fp-b"))

		assert.ErrorIs(t, err, apperror.ErrIdempotencyKeyReused)
	})
}

func TestIdempotencyStore_KeysAreScopedByPayer(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	store := newStore(kv)

	_, err := store.Claim(ctx, replayKey("user-1", "key-1", "fp-a"))
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, replayKey("user-1", "key-1", "fp-a"), checkout.Session{ClientSecret: "pi_1_secret"}))

	// the same key from another payer is a fresh claim
	prior, err := store.Claim(ctx, replayKey("user-2", "key-1", "fp-a"))
	require.NoError(t, err)
	assert.Nil(t, prior)

	// a separator in the payer id cannot reach another payer's key
	prior, err = store.Claim(ctx, replayKey("user-1:key", "1", "fp-a"))
	require.NoError(t, err)
	assert.Nil(t, prior)
	assert.Contains(t, kv.data, "checkout:idem:user-1%3Akey:1")
}

func TestIdempotencyStore_ReleaseAllowsRetry(t *testing.T) {
	ctx := context.Background()
	store := newStore(newMemoryKV(), InProgressTTL(time.Second))
	key := replayKey("user-1", "key-2", "fp-a")

	_, err := store.Claim(ctx, key)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, key))

	prior, err := store.Claim(ctx, key)

	require.NoError(t, err)
	assert.Nil(t, prior)
}

func TestIdempotencyStore_RedisError(t *testing.T) {
	kv := newMemoryKV()
	kv.err = errors.New("connection refused")
	store := newStore(kv)

	_, err := store.Claim(context.Background(), replayKey("user-1", "key-3", "fp-a"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrIdempotencyInProgress)
}

func TestIdempotencyStore_CorruptEntry(t *testing.T) {
	kv := newMemoryKV()
	kv.data["checkout:idem:user-1:key-4"] = "{not json"
	store := newStore(kv)

	_, err := store.Claim(context.Background(), replayKey("user-1", "key-4", "fp-a"))

	assert.ErrorContains(t, err, "decode stored session")
}
