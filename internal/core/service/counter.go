package service

import (
	"context"
	"strconv"
	"time"

	"hypertodo/internal/core/port"
	"hypertodo/internal/core/telemetry"
)

const counterServiceName = "counter"

type CounterService struct {
	store     port.CounterStore
	telemetry port.Telemetry
}

func NewCounterService(store port.CounterStore, probe port.Telemetry) *CounterService {
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	return &CounterService{store: store, telemetry: probe}
}

func (cs *CounterService) Increment(ctx context.Context) (int64, error) {
	ctx, span := cs.telemetry.StartServiceSpan(ctx, counterServiceName, "Increment", nil)
	defer span.End()

	start := time.Now()

	value, err := cs.store.Increment(ctx)
	cs.telemetry.RecordServiceOperation(ctx, counterServiceName, "Increment", time.Since(start), err)

	if err != nil {
		return 0, err
	}

	cs.telemetry.RecordBusinessEvent(ctx, "incremented", "counter", strconv.FormatInt(value, 10), nil)

	return value, nil
}

func (cs *CounterService) CurrentValue(ctx context.Context) (int64, error) {
	return cs.store.Current(ctx)
}
