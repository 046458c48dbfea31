package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xgrltd/storefront/internal/interfaces/http/dto"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a named function to HealthChecker
type HealthCheckFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

// Name returns the dependency name
func (f HealthCheckFunc) Name() string { return f.Label }

// Check runs the check
func (f HealthCheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// SessionCounter reports the number of live sessions
type SessionCounter interface {
	Len() int
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	sessions  SessionCounter
	checks    []HealthChecker
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, sessions SessionCounter, checks ...HealthChecker) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		sessions:  sessions,
		checks:    checks,
	}
}

// HealthResponse is the health endpoint body
type HealthResponse struct {
	Status    string            `json:"status"`
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	Sessions  int               `json:"sessions"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports liveness and dependency reachability. Any failing check
// turns the response into a 503.
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.sessions != nil {
		resp.Sessions = h.sessions.Len()
	}

	status := http.StatusOK
	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp.Checks = make(map[string]string, len(h.checks))
		for _, check := range h.checks {
			if err := check.Check(ctx); err != nil {
				resp.Checks[check.Name()] = err.Error()
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[check.Name()] = "ok"
		}
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
