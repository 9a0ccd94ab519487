package memory

import (
	"context"
	"sync/atomic"

	"hypertodo/internal/core/port"
)

// Counter keeps the click counter in process memory. It starts at zero and lives as long as the value does.
type Counter struct {
	value atomic.Int64
}

func NewCounter() port.CounterStore {
	return &Counter{}
}

func (c *Counter) Increment(ctx context.Context) (int64, error) {
	return c.value.Add(1), nil
}

func (c *Counter) Current(ctx context.Context) (int64, error) {
	return c.value.Load(), nil
}
