package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAppMetrics_RecordBusinessEvent(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	metrics.RecordBusinessEvent(ctx, "todo", "created")
	metrics.RecordBusinessEvent(ctx, "todo", "created")
	metrics.RecordBusinessEvent(ctx, "counter", "incremented")

	Expect(testutil.ToFloat64(metrics.todoOperations.WithLabelValues("created"))).To(Equal(2.0))
	Expect(testutil.ToFloat64(metrics.counterIncrements)).To(Equal(1.0))
}

func TestAppMetrics_RecordDatabaseOperation(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	metrics.RecordDatabaseOperation(ctx, "Toggle", "todo", time.Millisecond, nil)
	metrics.RecordDatabaseOperation(ctx, "Toggle", "todo", time.Millisecond, errors.New("boom"))

	Expect(testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Toggle", "todo", "ok"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Toggle", "todo", "error"))).To(Equal(1.0))
}

func TestAppMetrics_RecordRequest(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())

	metrics.RecordRequest(context.Background(), "PATCH", "/todo/:id", 404, time.Millisecond)

	Expect(testutil.ToFloat64(metrics.requestTotal.WithLabelValues("PATCH", "/todo/:id", "404"))).To(Equal(1.0))
}

func TestNoOpProbe(t *testing.T) {
	RegisterTestingT(t)

	probe := NewNoOpProbe()
	ctx, span := probe.StartServiceSpan(context.Background(), "todo", "AddTodo", nil)
	defer span.End()

	err := StartOperation(ctx, probe, "Insert", "todo").End(errors.New("boom"))
	Expect(err).To(MatchError("boom"))
}
