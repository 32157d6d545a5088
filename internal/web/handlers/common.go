package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/sysinfo"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondMessage sends a success response with a user-visible message.
func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": message})
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status  string       `json:"status"`
	Version string       `json:"version,omitempty"`
	Uptime  string       `json:"uptime"`
	Host    sysinfo.Info `json:"host"`
}

// HealthHandler reports liveness and kiosk host facts.
type HealthHandler struct {
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version, startedAt: time.Now()}
}

// HealthCheck handles the health check endpoint.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
		Host:    sysinfo.Collect(),
	})
}
