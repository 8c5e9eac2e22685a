package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/weather-stories/internal/stories"
)

const defaultTTL = time.Hour

// Cache wraps a Redis client and provides typed get/set for assembled
// story responses. Postgres stays the source of truth; this layer only
// skips reassembly of recently served responses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with a 1-hour TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// DailyKey is the cache key for a single day's response.
func DailyKey(city, country, date string) string {
	return "stories:daily:" + normalize(city) + ":" + normalize(country) + ":" + date
}

// WeeklyKey is the cache key for a weekly response starting at the given date.
func WeeklyKey(city, country, start string) string {
	return "stories:weekly:" + normalize(city) + ":" + normalize(country) + ":" + start
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Get retrieves an assembled response from cache.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) Get(ctx context.Context, key string) ([]stories.DayStory, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var days []stories.DayStory
	if err := json.Unmarshal([]byte(val), &days); err != nil {
		return nil, fmt.Errorf("unmarshaling cached response %s: %w", key, err)
	}

	return days, nil
}

// Set stores an assembled response with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, days []stories.DayStory) error {
	if len(days) == 0 {
		return nil
	}

	b, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("marshaling response for %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}

	return nil
}
