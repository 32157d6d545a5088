package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
	"github.com/kozaktomas/attendance-kiosk/internal/capture"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
	"github.com/kozaktomas/attendance-kiosk/internal/submission"
	"github.com/kozaktomas/attendance-kiosk/internal/web/middleware"
)

const maxFormMemory = 1 << 20

// EnrollHandler serves the register tab.
type EnrollHandler struct {
	kiosk   *kiosk.Controller
	decoder *schema.Decoder
}

// NewEnrollHandler creates a new enrollment handler
func NewEnrollHandler(k *kiosk.Controller) *EnrollHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &EnrollHandler{kiosk: k, decoder: decoder}
}

// Get returns the batch and any form kept from a failed submission.
func (h *EnrollHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.kiosk.State())
}

// CaptureResponse is returned after an enrollment capture.
type CaptureResponse struct {
	Frame   kiosk.FrameView  `json:"frame"`
	Batch   kiosk.BatchState `json:"batch"`
	Message string           `json:"message,omitempty"`
}

// Capture adds the current camera frame to the batch.
func (h *EnrollHandler) Capture(w http.ResponseWriter, r *http.Request) {
	frame, err := h.kiosk.CaptureEnrollment()
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, capture.ErrBatchFull) || errors.Is(err, submission.ErrSubmissionInFlight) {
			status = http.StatusConflict
		}
		respondError(w, status, kiosk.UserMessage(err, "Failed to capture image"))
		return
	}

	st := h.kiosk.State()
	respondJSON(w, http.StatusOK, CaptureResponse{
		Frame:   kiosk.FrameView{Index: st.Batch.Count - 1, ID: frame.ID, Preview: frame.PreviewURL(), CreatedAt: frame.CreatedAt},
		Batch:   st.Batch,
		Message: st.Notice,
	})
}

// RemoveFrame drops one frame by index.
func (h *EnrollHandler) RemoveFrame(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid frame index")
		return
	}
	if err := h.kiosk.RemoveFrame(index); err != nil {
		status := http.StatusNotFound
		if errors.Is(err, submission.ErrSubmissionInFlight) {
			status = http.StatusConflict
		}
		respondError(w, status, kiosk.UserMessage(err, err.Error()))
		return
	}
	respondJSON(w, http.StatusOK, h.kiosk.State().Batch)
}

// Reset discards the batch and stops the camera.
func (h *EnrollHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.kiosk.ResetBatch()
	respondJSON(w, http.StatusOK, h.kiosk.State().Batch)
}

// Submit registers the employee with the captured batch. The form is read
// from a JSON body or from an urlencoded / multipart form.
func (h *EnrollHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form, err := h.decodeForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	msg, err := h.kiosk.Enroll(r.Context(), form)
	if err != nil {
		var verr *submission.ValidationError
		status := http.StatusBadGateway
		switch {
		case errors.As(err, &verr):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, submission.ErrSubmissionInFlight):
			status = http.StatusConflict
		}
		slog.Warn("Enroll: submission failed", "employee_id", sanitizeForLog(form.EmployeeID), "error", err)
		respondError(w, status, kiosk.UserMessage(err, constants.MsgRegistrationFailed))
		return
	}
	slog.Info("Enroll: employee registered", "employee_id", sanitizeForLog(form.EmployeeID),
		"admin", middleware.AdminFromContext(r.Context()))
	respondMessage(w, msg)
}

func (h *EnrollHandler) decodeForm(r *http.Request) (submission.EmployeeForm, error) {
	var form submission.EmployeeForm
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json", "":
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			return form, err
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return form, err
		}
		if err := h.decoder.Decode(&form, r.PostForm); err != nil {
			return form, err
		}
	default:
		if err := r.ParseForm(); err != nil {
			return form, err
		}
		if err := h.decoder.Decode(&form, r.PostForm); err != nil {
			return form, err
		}
	}
	return form, nil
}
