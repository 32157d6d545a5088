package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
	"github.com/kozaktomas/attendance-kiosk/internal/submission"
	"github.com/kozaktomas/attendance-kiosk/internal/web/middleware"
)

// KioskHandler serves the kiosk screen: view switching, camera and verification.
type KioskHandler struct {
	kiosk          *kiosk.Controller
	sessionManager *middleware.SessionManager
}

// NewKioskHandler creates a new kiosk handler
func NewKioskHandler(k *kiosk.Controller, sm *middleware.SessionManager) *KioskHandler {
	return &KioskHandler{kiosk: k, sessionManager: sm}
}

// GetView returns the screen state.
func (h *KioskHandler) GetView(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.kiosk.State())
}

type switchViewRequest struct {
	View string `json:"view"`
}

// SwitchView activates another view. The camera always stops.
func (h *KioskHandler) SwitchView(w http.ResponseWriter, r *http.Request) {
	var req switchViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	view, err := kiosk.ParseView(req.View)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A persisted session reopens the gate after a kiosk restart.
	if view.Admin() && !h.kiosk.Admin() && h.sessionManager.GetSessionFromRequest(r) != nil {
		h.kiosk.RestoreAdmin()
	}

	if err := h.kiosk.Switch(r.Context(), view); err != nil {
		if errors.Is(err, kiosk.ErrAdminRequired) {
			respondError(w, http.StatusUnauthorized, kiosk.UserMessage(err, ""))
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.kiosk.State())
}

// StartCamera starts the camera. Failures are returned with the user-facing reason.
func (h *KioskHandler) StartCamera(w http.ResponseWriter, r *http.Request) {
	if err := h.kiosk.StartCamera(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, kiosk.UserMessage(err, err.Error()))
		return
	}
	respondJSON(w, http.StatusOK, h.kiosk.State())
}

// StopCamera stops the camera. Stopping a stopped camera succeeds.
func (h *KioskHandler) StopCamera(w http.ResponseWriter, r *http.Request) {
	h.kiosk.StopCamera()
	respondJSON(w, http.StatusOK, h.kiosk.State())
}

// CameraStatusResponse describes the camera.
type CameraStatusResponse struct {
	Active bool   `json:"active"`
	Error  string `json:"error,omitempty"`
}

// CameraStatus reports whether the camera is running.
func (h *KioskHandler) CameraStatus(w http.ResponseWriter, r *http.Request) {
	st := h.kiosk.State()
	respondJSON(w, http.StatusOK, CameraStatusResponse{Active: st.CameraActive, Error: st.CameraError})
}

// Verify captures one frame and submits it for attendance.
func (h *KioskHandler) Verify(w http.ResponseWriter, r *http.Request) {
	out, err := h.kiosk.Verify(r.Context())
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, submission.ErrSubmissionInFlight) {
			status = http.StatusConflict
		}
		respondError(w, status, kiosk.UserMessage(err, constants.MsgFaceNotRecognized))
		return
	}
	slog.Debug("Kiosk: verification answered", "outcome", out.Kind())
	respondJSON(w, http.StatusOK, kiosk.NewOutcomeView(out, h.kiosk.Location()))
}

// DismissOutcome closes the result display.
func (h *KioskHandler) DismissOutcome(w http.ResponseWriter, r *http.Request) {
	h.kiosk.DismissOutcome()
	respondJSON(w, http.StatusOK, h.kiosk.State())
}
