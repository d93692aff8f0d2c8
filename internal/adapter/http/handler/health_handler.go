package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/adapter/http/dto"
)

// ServiceName is reported by the liveness check.
const ServiceName = "Axiom Pay Backend"

const readinessTimeout = 5 * time.Second

// Checker is a dependency checked by the readiness endpoint.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checkers []Checker
	logger   zerolog.Logger
	now      func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(logger zerolog.Logger, checkers ...Checker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		logger:   logger,
		now:      time.Now,
	}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Service:   ServiceName,
	})
}

// Readiness returns 200 if every dependency answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := dto.ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(h.checkers))}
	status := http.StatusOK

	for _, c := range h.checkers {
		if err := c.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Str("dependency", c.Name()).Msg("readiness check failed")
			resp.Checks[c.Name()] = "unavailable"
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.Name()] = "ok"
	}

	writeJSON(w, status, resp)
}
