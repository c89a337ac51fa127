package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"myCampaignEngine/business/bandit"

	"github.com/redis/go-redis/v9"
)

// contacts are kept a little past the day they count so late reads still
// see them
const frequencyKeyTTL = 48 * time.Hour

// FrequencyRepository counts contacts per user, channel and UTC day so the
// frequency cap holds across every engine instance.
type FrequencyRepository struct {
	client *redis.Client
}

var _ bandit.FrequencyCounter = (*FrequencyRepository)(nil)

func NewFrequencyRepository(client *redis.Client) *FrequencyRepository {
	return &FrequencyRepository{
		client: client,
	}
}

func frequencyKey(userID, channel string, day time.Time) string {
	// key format: "freqcap:{user_id}:{channel}:{yyyymmdd}"
	return fmt.Sprintf("freqcap:%s:%s:%s", userID, channel, day.UTC().Format("20060102"))
}

func (r *FrequencyRepository) Count(ctx context.Context, userID, channel string, day time.Time) (int64, error) {
	val, err := r.client.Get(ctx, frequencyKey(userID, channel, day)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read contact count: %w", err)
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid contact count %q: %w", val, err)
	}
	return n, nil
}

// Incr bumps the counter and refreshes its TTL in one round trip.
func (r *FrequencyRepository) Incr(ctx context.Context, userID, channel string, day time.Time) (int64, error) {
	key := frequencyKey(userID, channel, day)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, frequencyKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment contact count: %w", err)
	}

	return incr.Val(), nil
}
