package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

const DefaultTTL = 6 * time.Hour

var _ domain.FitnessClient = (*CachedFitnessClient)(nil)

// CachedFitnessClient serves settled days from Redis. Today and yesterday
// are always fetched live because Garmin keeps revising them.
type CachedFitnessClient struct {
	next  domain.FitnessClient
	cache *redis.Client
	ttl   time.Duration
	now   func() time.Time
}

func NewCachedFitnessClient(next domain.FitnessClient, cache *redis.Client, ttl time.Duration) *CachedFitnessClient {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedFitnessClient{
		next:  next,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *CachedFitnessClient) stepsKey(day time.Time) string {
	return fmt.Sprintf("garmin:steps:%s", day.Format(domain.DateLayout))
}

func (c *CachedFitnessClient) sleepKey(day time.Time) string {
	return fmt.Sprintf("garmin:sleep:%s", day.Format(domain.DateLayout))
}

func (c *CachedFitnessClient) settled(day time.Time) bool {
	yesterday := domain.Day(c.now()).AddDate(0, 0, -1)
	return domain.Day(day).Before(yesterday)
}

func (c *CachedFitnessClient) Login(ctx context.Context) error {
	return c.next.Login(ctx)
}

func (c *CachedFitnessClient) GetDailySteps(ctx context.Context, start, end time.Time) ([]domain.DailyStepRecord, error) {
	if !domain.Day(start).Equal(domain.Day(end)) || !c.settled(end) {
		return c.next.GetDailySteps(ctx, start, end)
	}

	key := c.stepsKey(start)
	var cached []domain.DailyStepRecord
	if c.read(ctx, key, &cached) {
		return cached, nil
	}

	records, err := c.next.GetDailySteps(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		c.write(ctx, key, records)
	}
	return records, nil
}

func (c *CachedFitnessClient) GetSleepData(ctx context.Context, date time.Time) (domain.SleepRecord, error) {
	if !c.settled(date) {
		return c.next.GetSleepData(ctx, date)
	}

	key := c.sleepKey(date)
	var cached domain.SleepRecord
	if c.read(ctx, key, &cached) {
		return cached, nil
	}

	record, err := c.next.GetSleepData(ctx, date)
	if err != nil {
		return record, err
	}
	if record.Shape != domain.SleepShapeEmpty {
		c.write(ctx, key, record)
	}
	return record, nil
}

func (c *CachedFitnessClient) read(ctx context.Context, key string, dst any) bool {
	val, err := c.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE] Redis read error: %v", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(val), dst); err != nil {
		log.Printf("[CACHE] Corrupted data at %s, cleaning up key", key)
		c.cache.Del(ctx, key)
		return false
	}
	return true
}

func (c *CachedFitnessClient) write(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[CACHE] Redis set error: %v", err)
	}
}
