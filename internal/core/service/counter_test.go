package service_test

import (
	"context"
	"sync"
	"testing"

	. "github.com/onsi/gomega"

	"hypertodo/internal/adapter/database/memory"
	"hypertodo/internal/core/service"
)

func TestCounterService_StartsAtZero(t *testing.T) {
	RegisterTestingT(t)

	svc := service.NewCounterService(memory.NewCounter(), nil)

	value, err := svc.CurrentValue(context.Background())
	Expect(err).To(BeNil())
	Expect(value).To(BeZero())
}

func TestCounterService_ConcurrentIncrements(t *testing.T) {
	RegisterTestingT(t)

	svc := service.NewCounterService(memory.NewCounter(), nil)
	ctx := context.Background()

	const clicks = 200

	var wg sync.WaitGroup
	seen := make(chan int64, clicks)

	for range clicks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := svc.Increment(ctx)
			if err == nil {
				seen <- value
			}
		}()
	}

	wg.Wait()
	close(seen)

	unique := map[int64]bool{}
	for v := range seen {
		unique[v] = true
	}

	Expect(unique).To(HaveLen(clicks))

	value, err := svc.CurrentValue(ctx)
	Expect(err).To(BeNil())
	Expect(value).To(Equal(int64(clicks)))
}
