package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/questiongen/internal/api/shared"
	"github.com/phrazzld/questiongen/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	buf, l := logger.NewTestLogger(t)
	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	})

	rec := httptest.NewRecorder()
	NewTraceMiddleware(l)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Len(t, traceID, shared.TraceIDLength)
	assert.Equal(t, traceID, rec.Header().Get(TraceHeader))
	assert.Contains(t, buf.String(), `"trace_id":"`+traceID+`"`)
}

func TestTraceMiddleware_UsesRequestID(t *testing.T) {
	_, l := logger.NewTestLogger(t)
	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
	})

	handler := chimiddleware.RequestID(NewTraceMiddleware(l)(next))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied-id", traceID)
	assert.Equal(t, "client-supplied-id", rec.Header().Get(TraceHeader))
}
