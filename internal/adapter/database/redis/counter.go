package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"hypertodo/internal/core/port"
)

const DefaultCounterKey = "hypertodo:counter"

// Counter keeps the click counter under one Redis key. The key is reset when a process
// starts, so the count lives as long as the process that created it.
// INCR is atomic on the server, so concurrent increments never lose an update.
type Counter struct {
	client *goredis.Client
	key    string
}

// NewClient parses a redis:// URL and checks the server is reachable.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)

	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	return client, nil
}

// NewCounter clears key so the counter starts at zero for this process, like the in-memory store.
func NewCounter(ctx context.Context, client *goredis.Client, key string) (port.CounterStore, error) {
	if key == "" {
		key = DefaultCounterKey
	}

	if err := client.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("reset counter: %w", err)
	}

	return &Counter{client: client, key: key}, nil
}

func (c *Counter) Increment(ctx context.Context) (int64, error) {
	return c.client.Incr(ctx, c.key).Result()
}

func (c *Counter) Current(ctx context.Context) (int64, error) {
	value, err := c.client.Get(ctx, c.key).Int64()

	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}

	return value, err
}
