package port

import "context"

// CounterStore holds the click counter. Implementations must make Increment atomic.
type CounterStore interface {
	Increment(ctx context.Context) (int64, error)
	Current(ctx context.Context) (int64, error)
}

type CounterService interface {
	Increment(ctx context.Context) (int64, error)
	CurrentValue(ctx context.Context) (int64, error)
}
