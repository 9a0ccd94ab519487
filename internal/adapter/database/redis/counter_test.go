package redis

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
)

func newTestCounter(t *testing.T) *Counter {
	url := os.Getenv("TEST_REDIS_URL")

	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()

	client, err := NewClient(ctx, url)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}

	key := "hypertodo:test:" + uuid.NewString()

	t.Cleanup(func() {
		client.Del(ctx, key)
		client.Close()
	})

	store, err := NewCounter(ctx, client, key)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}

	return store.(*Counter)
}

func TestRedisCounter_StartsAtZero(t *testing.T) {
	RegisterTestingT(t)
	counter := newTestCounter(t)

	value, err := counter.Current(context.Background())

	Expect(err).To(BeNil())
	Expect(value).To(Equal(int64(0)))
}

func TestRedisCounter_ConcurrentIncrements(t *testing.T) {
	RegisterTestingT(t)
	counter := newTestCounter(t)
	ctx := context.Background()

	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counter.Increment(ctx)
		}()
	}
	wg.Wait()

	value, err := counter.Current(ctx)
	Expect(err).To(BeNil())
	Expect(value).To(Equal(int64(n)))
}

func TestRedisCounter_ResetsWhenReopened(t *testing.T) {
	RegisterTestingT(t)
	counter := newTestCounter(t)
	ctx := context.Background()

	_, err := counter.Increment(ctx)
	Expect(err).To(BeNil())

	reopened, err := NewCounter(ctx, counter.client, counter.key)
	Expect(err).To(BeNil())

	value, err := reopened.Current(ctx)
	Expect(err).To(BeNil())
	Expect(value).To(BeZero())
}
