package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/attendance-kiosk/internal/backend"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
)

// AttendanceHandler serves the attendance and status tabs.
type AttendanceHandler struct {
	kiosk *kiosk.Controller
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(k *kiosk.Controller) *AttendanceHandler {
	return &AttendanceHandler{kiosk: k}
}

// AttendanceRow is an attendance record with display fields in the kiosk time zone.
type AttendanceRow struct {
	backend.AttendanceRecord
	Date        string `json:"date"`
	Time        string `json:"time"`
	StatusLabel string `json:"status_label"`
}

// AttendanceResponse is the attendance list.
type AttendanceResponse struct {
	Date    string          `json:"date,omitempty"`
	Records []AttendanceRow `json:"records"`
	Count   int             `json:"count"`
}

func attendanceRow(rec backend.AttendanceRecord, loc *time.Location) AttendanceRow {
	row := AttendanceRow{AttendanceRecord: rec, StatusLabel: rec.Status.Label()}
	if !rec.Timestamp.IsZero() {
		local := rec.Timestamp.In(loc)
		row.Date = local.Format("1/2/2006")
		row.Time = local.Format("3:04:05 PM")
	}
	return row
}

// List loads attendance records, optionally for ?date=YYYY-MM-DD.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := time.Parse(backend.DateLayout, date); err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	records, err := h.kiosk.LoadAttendance(r.Context(), date)
	if err != nil {
		slog.Warn("Attendance: load failed", "date", sanitizeForLog(date), "error", err)
		respondError(w, http.StatusBadGateway, kiosk.UserMessage(err, constants.MsgAttendanceLoadFailed))
		return
	}

	rows := make([]AttendanceRow, len(records))
	for i, rec := range records {
		rows[i] = attendanceRow(rec, h.kiosk.Location())
	}
	respondJSON(w, http.StatusOK, AttendanceResponse{Date: date, Records: rows, Count: len(rows)})
}

// Export downloads the loaded records as CSV. The backend is not contacted.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := h.kiosk.ExportAttendance(&buf)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to export attendance")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// StatusResponseBody is an employee's statistics with display fields.
type StatusResponseBody struct {
	*backend.EmployeeStatus
	RecentRows []AttendanceRow `json:"recent_rows"`
}

// EmployeeStatus returns aggregated statistics for one employee.
func (h *AttendanceHandler) EmployeeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing employee ID")
		return
	}

	status, err := h.kiosk.EmployeeStatus(r.Context(), id)
	if err != nil {
		code := http.StatusBadGateway
		if backend.IsNotFoundError(err) {
			code = http.StatusNotFound
		}
		respondError(w, code, kiosk.UserMessage(err, constants.MsgStatusLoadFailed))
		return
	}

	rows := make([]AttendanceRow, 0, len(status.RecentRecords))
	for _, rec := range status.RecentRecords {
		rows = append(rows, attendanceRow(backend.AttendanceRecord{
			EmployeeID:   status.EmployeeID,
			EmployeeName: status.EmployeeName,
			Timestamp:    rec.Timestamp,
			Status:       rec.Status,
		}, h.kiosk.Location()))
	}
	respondJSON(w, http.StatusOK, StatusResponseBody{EmployeeStatus: status, RecentRows: rows})
}
