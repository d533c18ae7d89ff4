package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/questiongen/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type fakeCounter struct {
	noop.Int64Counter
	mu       sync.Mutex
	byStatus map[string]int64
}

func (c *fakeCounter) Add(_ context.Context, incr int64, opts ...metric.AddOption) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := metric.NewAddConfig(opts).Attributes()
	status, _ := set.Value("status")
	c.byStatus[status.AsString()] += incr
}

type fakeUpDown struct {
	noop.Int64UpDownCounter
	value int64
}

func (c *fakeUpDown) Add(_ context.Context, incr int64, _ ...metric.AddOption) {
	c.value += incr
}

type fakeHistogram struct {
	noop.Float64Histogram
	values []float64
}

func (h *fakeHistogram) Record(_ context.Context, v float64, _ ...metric.RecordOption) {
	h.values = append(h.values, v)
}

func TestMetricsHandler(t *testing.T) {
	counter := &fakeCounter{byStatus: map[string]int64{}}
	active := &fakeUpDown{}
	duration := &fakeHistogram{}
	h := NewMetricsHandler(&Metrics{TasksTransitioned: counter, TasksActive: active, TaskDuration: duration})
	ctx := context.Background()
	created := time.Now().Add(-3 * time.Second)

	for _, e := range []*events.TaskEvent{
		events.NewTaskEvent("a", "", "pending", created),
		events.NewTaskEvent("a", "pending", "processing", created),
		events.NewTaskEvent("b", "", "pending", created),
		events.NewTaskEvent("a", "processing", "completed", created),
	} {
		require.NoError(t, h.HandleEvent(ctx, e))
	}

	assert.Equal(t, int64(2), counter.byStatus["pending"])
	assert.Equal(t, int64(1), counter.byStatus["processing"])
	assert.Equal(t, int64(1), counter.byStatus["completed"])
	assert.Equal(t, int64(1), active.value)
	require.Len(t, duration.values, 1)
	assert.GreaterOrEqual(t, duration.values[0], 3.0)
}

func TestNewMetricsWithMeter(t *testing.T) {
	m, err := NewMetricsWithMeter(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	h := NewMetricsHandler(m)
	assert.NoError(t, h.HandleEvent(context.Background(), events.NewTaskEvent("a", "", "pending", time.Now())))
}

func TestHTTPMiddleware(t *testing.T) {
	handler := HTTPMiddleware("questiongen")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
