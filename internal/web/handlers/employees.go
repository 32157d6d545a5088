package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/attendance-kiosk/internal/backend"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
	"github.com/kozaktomas/attendance-kiosk/internal/web/middleware"
)

// EmployeesHandler serves the employees tab.
type EmployeesHandler struct {
	kiosk *kiosk.Controller
}

// NewEmployeesHandler creates a new employees handler
func NewEmployeesHandler(k *kiosk.Controller) *EmployeesHandler {
	return &EmployeesHandler{kiosk: k}
}

// EmployeesResponse is the employee list.
type EmployeesResponse struct {
	Employees []backend.Employee `json:"employees"`
	Count     int                `json:"count"`
	LoadedAt  time.Time          `json:"loaded_at"`
}

// List reloads the roster and returns it, filtered by the optional q parameter.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.kiosk.RefreshRoster(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, kiosk.UserMessage(err, constants.MsgEmployeesLoadFailed))
		return
	}

	roster := h.kiosk.Roster()
	employees := roster.Filter(r.URL.Query().Get("q"))
	if employees == nil {
		employees = []backend.Employee{}
	}
	respondJSON(w, http.StatusOK, EmployeesResponse{
		Employees: employees,
		Count:     len(employees),
		LoadedAt:  roster.LoadedAt(),
	})
}

// Delete removes one employee and reloads the roster.
func (h *EmployeesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing employee ID")
		return
	}
	msg, err := h.kiosk.DeleteEmployee(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if backend.IsNotFoundError(err) {
			status = http.StatusNotFound
		}
		respondError(w, status, kiosk.UserMessage(err, constants.MsgEmployeeDeleteFailed))
		return
	}
	slog.Info("Employees: deleted", "employee_id", sanitizeForLog(id), "admin", middleware.AdminFromContext(r.Context()))
	respondMessage(w, msg)
}
