package core

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const viewCountKeyPrefix = "anishare:views:"

func viewCountKey(slug string) string {
	return viewCountKeyPrefix + slug
}

// ViewCounter tracks per-work page views in Redis. Counts are best-effort
// display data, not billing data; a lost increment is acceptable.
type ViewCounter struct {
	redis RedisClientRaw
}

func NewViewCounter(redis RedisClientRaw) *ViewCounter {
	return &ViewCounter{redis: redis}
}

// Increment bumps the view count for slug and returns the new value.
func (s *ViewCounter) Increment(ctx context.Context, slug string) (int64, error) {
	return s.redis.Incr(ctx, viewCountKey(slug)).Result()
}

// Views returns the current count for slug; a never-viewed work reads as 0.
func (s *ViewCounter) Views(ctx context.Context, slug string) (int64, error) {
	val, err := s.redis.Get(ctx, viewCountKey(slug)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// Snapshot returns counts for all given slugs in one round trip. Missing and
// unparsable entries read as 0.
func (s *ViewCounter) Snapshot(ctx context.Context, slugs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(slugs))
	if len(slugs) == 0 {
		return counts, nil
	}
	keys := make([]string, len(slugs))
	for i, slug := range slugs {
		keys[i] = viewCountKey(slug)
	}
	vals, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		counts[slugs[i]] = 0
		if str, ok := v.(string); ok {
			if n, err := strconv.ParseInt(str, 10, 64); err == nil {
				counts[slugs[i]] = n
			}
		}
	}
	return counts, nil
}
