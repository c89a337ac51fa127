package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*FrequencyRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFrequencyRepository(client), mr
}

func TestFrequencyRepository_CountAndIncr(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)
	day := time.Date(2026, 5, 4, 23, 30, 0, 0, time.UTC)

	n, err := repo.Count(ctx, "U-1", "sms", day)
	require.NoError(t, err)
	assert.Zero(t, n)

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Incr(ctx, "U-1", "sms", day)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	n, err = repo.Count(ctx, "U-1", "sms", day)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.True(t, mr.Exists("freqcap:U-1:sms:20260504"))
	assert.Equal(t, frequencyKeyTTL, mr.TTL("freqcap:U-1:sms:20260504"))

	// other channel and the next day are separate budgets
	n, err = repo.Count(ctx, "U-1", "email", day)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.Count(ctx, "U-1", "sms", day.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFrequencyRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)
	day := time.Now()

	_, err := repo.Incr(ctx, "U-1", "push", day)
	require.NoError(t, err)

	mr.FastForward(frequencyKeyTTL + time.Second)

	n, err := repo.Count(ctx, "U-1", "push", day)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFrequencyRepository_Errors(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	require.NoError(t, mr.Set(frequencyKey("U-1", "sms", time.Now()), "lots"))
	_, err := repo.Count(ctx, "U-1", "sms", time.Now())
	assert.Error(t, err)

	mr.Close()
	_, err = repo.Incr(ctx, "U-1", "sms", time.Now())
	assert.Error(t, err)
}
