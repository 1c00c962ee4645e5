package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskboard/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func TestLimiter_Allow(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewLimiter(client, "login", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "hit %d should pass", i+1)
	}

	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Other keys have their own window.
	ok, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, time.Minute, mr.TTL("login:10.0.0.1"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_HealsCounterWithoutTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewLimiter(client, "login", 3, time.Minute)
	ctx := context.Background()

	// A counter left behind without an expiry.
	require.NoError(t, mr.Set("login:alice", "1"))

	for i := 0; i < 5; i++ {
		_, err := limiter.Allow(ctx, "alice")
		require.NoError(t, err)
	}
	assert.Equal(t, time.Minute, mr.TTL("login:alice"))

	mr.FastForward(time.Minute + time.Second)
	ok, err := limiter.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewLimiter(client, "login", 1, time.Minute)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "alice")
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	assert.Error(t, err)
}

func TestLimiter_ExpireFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, "login", 5, time.Minute)

	mock.ExpectTxPipeline()
	mock.ExpectIncr("login:alice").SetVal(1)
	mock.ExpectTTL("login:alice").SetVal(-1)
	mock.ExpectTxPipelineExec()
	mock.ExpectExpire("login:alice", time.Minute).SetErr(errors.New("READONLY"))

	_, err := limiter.Allow(context.Background(), "alice")
	assert.ErrorContains(t, err, "failed to set window for login:alice")

	// The next hit finds the key still without a TTL and arms it.
	mock.ExpectTxPipeline()
	mock.ExpectIncr("login:alice").SetVal(2)
	mock.ExpectTTL("login:alice").SetVal(-1)
	mock.ExpectTxPipelineExec()
	mock.ExpectExpire("login:alice", time.Minute).SetVal(true)

	ok, err := limiter.Allow(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiter_LaterHitsKeepWindow(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, "login", 5, time.Minute)

	mock.ExpectTxPipeline()
	mock.ExpectIncr("login:alice").SetVal(6)
	mock.ExpectTTL("login:alice").SetVal(30 * time.Second)
	mock.ExpectTxPipelineExec()

	ok, err := limiter.Allow(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
