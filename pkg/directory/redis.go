package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "ticketflow:displayname:"

// RedisCache decorates a Directory with a Redis-backed name cache. Lookup
// failures against Redis degrade to the underlying directory; they are logged,
// never surfaced.
type RedisCache struct {
	client *redis.Client
	next   Directory
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache creates a caching directory in front of next.
func NewRedisCache(client *redis.Client, next Directory, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) DisplayName(ctx context.Context, userID string) (string, error) {
	key := cacheKeyPrefix + userID

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}

	if err != nil && err != redis.Nil {
		c.logger.WarnContext(ctx, "Display name cache read failed", "user_id", userID, "error", err)
	}

	name, err := c.next.DisplayName(ctx, userID)
	if err != nil {
		return name, err
	}

	if setErr := c.client.Set(ctx, key, name, c.ttl).Err(); setErr != nil {
		c.logger.WarnContext(ctx, "Display name cache write failed", "user_id", userID, "error", setErr)
	}

	return name, nil
}

func (c *RedisCache) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	resolved := make(map[string]string, len(userIDs))

	for _, id := range userIDs {
		name, err := c.DisplayName(ctx, id)
		if err != nil {
			return nil, err
		}

		resolved[id] = name
	}

	return resolved, nil
}
