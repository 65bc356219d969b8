package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

// Pinger is the slice of the save store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger *slog.Logger
}

func NewHealthHandler(store Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]any)
	overallStatus := "healthy"

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("Save store health check failed", "error", err)
			components["storage"] = map[string]string{"status": "unhealthy", "error": err.Error()}
			overallStatus = "degraded"
		} else {
			components["storage"] = map[string]string{"status": "healthy"}
		}
	} else {
		components["storage"] = map[string]string{"status": "healthy", "mode": "memory"}
	}

	status := http.StatusOK
	if overallStatus != "healthy" {
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now().UTC(),
		Service:    "pointclick",
		Components: components,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode health response", "error", err)
	}
}
