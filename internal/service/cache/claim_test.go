package cache

import (
	"context"
	stderrors "errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	svc := NewCacheServiceFromClient(client, zap.NewNop())
	t.Cleanup(func() { _ = svc.Close() })
	return svc, mr
}

func TestClaimer_FirstClaimWins(t *testing.T) {
	svc, mr := newTestCache(t)
	claimer := NewClaimer(svc, "replica-a", zap.NewNop())
	ctx := context.Background()

	assert.True(t, claimer.Claim(ctx, "1001"))
	assert.False(t, claimer.Claim(ctx, "1001"))
	assert.True(t, claimer.Claim(ctx, "1002"))

	key := constants.RedisConfig.KeyPrefix + "1001"
	owner, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "replica-a", owner)
	assert.Equal(t, constants.RedisConfig.ClaimTTL, mr.TTL(key))
}

func TestClaimer_ExpiredClaimCanBeRetaken(t *testing.T) {
	svc, mr := newTestCache(t)
	claimer := NewClaimer(svc, "replica-a", nil)
	ctx := context.Background()

	require.True(t, claimer.Claim(ctx, "1001"))
	mr.FastForward(constants.RedisConfig.ClaimTTL)
	assert.True(t, claimer.Claim(ctx, "1001"))
}

func TestClaimer_FailsOpen(t *testing.T) {
	svc, mr := newTestCache(t)
	claimer := NewClaimer(svc, "replica-a", zap.NewNop())
	mr.Close()

	assert.True(t, claimer.Claim(context.Background(), "1001"))
}

func TestClaimer_DisabledAlwaysGrants(t *testing.T) {
	claimer := NewClaimer(nil, "", nil)
	assert.True(t, claimer.Claim(context.Background(), "1001"))
	assert.True(t, claimer.Claim(context.Background(), "1001"))

	var nilClaimer *Claimer
	assert.True(t, nilClaimer.Claim(context.Background(), "1001"))
}

func TestNewCacheService_WaitsForRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	svc, err := NewCacheService(CacheConfig{Host: mr.Host(), Port: port}, zap.NewNop())
	require.NoError(t, err)
	defer svc.Close()

	assert.True(t, svc.IsConnected(context.Background()))
	ok, err := svc.SetNX(context.Background(), "k", "v", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewCacheService_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	host := mr.Host()
	mr.Close()

	svc, err := NewCacheService(CacheConfig{Host: host, Port: port, ReadyTimeout: 300 * time.Millisecond}, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, svc)

	var cacheErr *errors.CacheError
	require.True(t, stderrors.As(err, &cacheErr))
	assert.Equal(t, "ping", cacheErr.Operation)
}
