package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ShoppingListCache stores rendered shopping lists in redis so repeated
// downloads don't re-run the aggregation. Entries expire after ttl and are
// invalidated whenever the owning user's cart changes.
type ShoppingListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewShoppingListCache(redisURL, password string, ttl time.Duration) (*ShoppingListCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ShoppingListCache{client: client, ttl: ttl}, nil
}

func key(userID string) string {
	return fmt.Sprintf("shopping_list:user:%s", userID)
}

func (c *ShoppingListCache) Get(ctx context.Context, userID string) (string, bool, error) {
	text, err := c.client.Get(ctx, key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return text, true, nil
}

func (c *ShoppingListCache) Set(ctx context.Context, userID, text string) error {
	return c.client.Set(ctx, key(userID), text, c.ttl).Err()
}

func (c *ShoppingListCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, key(userID)).Err()
}

func (c *ShoppingListCache) Close() error {
	return c.client.Close()
}
