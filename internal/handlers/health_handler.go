package handlers

import (
	"context"
	"net/http"
	"time"

	"testadmin/internal/models"
	"testadmin/internal/utils"
)

// ReadinessCheck probes one dependency.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]ReadinessCheck
}

func NewHealthHandler(checks map[string]ReadinessCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]ReadinessCheck{}
	}
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := map[string]string{}
	ready := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			ready = false
			continue
		}
		status[name] = "ok"
	}

	if !ready {
		utils.JSON(w, http.StatusServiceUnavailable, map[string]any{
			"code":   models.CodeServiceUnavailable,
			"status": "not ready",
			"checks": status,
		})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": status})
}
