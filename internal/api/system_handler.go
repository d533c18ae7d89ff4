package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/questiongen/internal/api/shared"
	"github.com/phrazzld/questiongen/internal/task"
)

// Service identification reported by GET /.
const (
	ServiceName    = "Question Generator"
	ServiceVersion = "1.0.0"
	ServiceMode    = "async_restful"
)

// BackendInfo describes the configured generation backend for /stats.
type BackendInfo struct {
	Backend  string
	Model    string
	MockMode bool
}

// SystemHandler serves the service banner, health and stats endpoints.
type SystemHandler struct {
	tasks   TaskService
	backend BackendInfo
	started time.Time
	now     func() time.Time
}

// NewSystemHandler creates a SystemHandler. Uptime is measured from started.
func NewSystemHandler(tasks TaskService, backend BackendInfo, started time.Time) *SystemHandler {
	return &SystemHandler{
		tasks:   tasks,
		backend: backend,
		started: started,
		now:     time.Now,
	}
}

// Root handles GET /.
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, ServiceInfoResponse{
		Service: ServiceName,
		Version: ServiceVersion,
		Status:  "running",
		Mode:    ServiceMode,
	})
}

// Health handles GET /health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Timestamp:   h.now().UTC(),
		ActiveTasks: h.tasks.ActiveCount(),
	})
}

// Stats handles GET /stats.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uptime := h.now().Sub(h.started)
	if uptime < 0 {
		uptime = 0
	}

	counts := h.tasks.Counts()
	byStatus := make(map[string]int, len(task.Statuses))
	total := 0
	for _, s := range task.Statuses {
		byStatus[string(s)] = counts[s]
		total += counts[s]
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatsResponse{
		Status:        "running",
		Uptime:        uptime.Seconds(),
		UptimeHuman:   uptime.Round(time.Second).String(),
		Backend:       h.backend.Backend,
		Model:         h.backend.Model,
		MockMode:      h.backend.MockMode,
		ActiveTasks:   h.tasks.ActiveCount(),
		TasksByStatus: byStatus,
		TotalTasks:    total,
	})
}
