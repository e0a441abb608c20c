package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker func(ctx context.Context) error

// HealthHandler answers liveness probes
type HealthHandler struct {
	version string
	check   HealthChecker
}

// NewHealthHandler creates a health handler. check may be nil.
func NewHealthHandler(version string, check HealthChecker) *HealthHandler {
	return &HealthHandler{version: version, check: check}
}

// Get reports service health
// GET /health
func (h *HealthHandler) Get(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	}

	if h.check != nil {
		if err := h.check(c.Request.Context()); err != nil {
			_ = c.Error(err)
			resp.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}
