// Package telemetry records task lifecycle metrics and HTTP spans with
// OpenTelemetry. Setup exports them over OTLP when enabled; otherwise the
// global no-op implementations are used.
package telemetry

import (
	"context"

	"github.com/phrazzld/questiongen/internal/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "questiongen"

// Metrics holds the task lifecycle instruments.
type Metrics struct {
	TasksTransitioned metric.Int64Counter
	TasksActive       metric.Int64UpDownCounter
	TaskDuration      metric.Float64Histogram
}

// NewMetrics creates the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithMeter(otel.Meter(meterName))
}

// NewMetricsWithMeter creates the instruments on meter.
func NewMetricsWithMeter(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.TasksTransitioned, err = meter.Int64Counter("questiongen.tasks.transitions",
		metric.WithDescription("Number of task lifecycle transitions by target status"))
	if err != nil {
		return nil, err
	}

	m.TasksActive, err = meter.Int64UpDownCounter("questiongen.tasks.active",
		metric.WithDescription("Number of pending or processing tasks"))
	if err != nil {
		return nil, err
	}

	m.TaskDuration, err = meter.Float64Histogram("questiongen.task.duration_seconds",
		metric.WithDescription("Time from submission to a terminal status"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// MetricsHandler turns task events into metric updates.
type MetricsHandler struct {
	metrics *Metrics
}

var _ events.EventHandler = (*MetricsHandler)(nil)

// NewMetricsHandler creates a MetricsHandler recording into m.
func NewMetricsHandler(m *Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// HandleEvent implements events.EventHandler.
func (h *MetricsHandler) HandleEvent(ctx context.Context, e *events.TaskEvent) error {
	status := attribute.String("status", e.To)
	h.metrics.TasksTransitioned.Add(ctx, 1, metric.WithAttributes(status))

	switch e.To {
	case "pending":
		h.metrics.TasksActive.Add(ctx, 1)
	case "completed", "failed":
		h.metrics.TasksActive.Add(ctx, -1)
		h.metrics.TaskDuration.Record(ctx, e.Duration.Seconds(), metric.WithAttributes(status))
	}
	return nil
}
