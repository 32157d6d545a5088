package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/attendance-kiosk/internal/capture"
)

// PreviewHandler serves captured frames by display handle.
type PreviewHandler struct {
	store *capture.PreviewStore
}

// NewPreviewHandler creates a new preview handler
func NewPreviewHandler(store *capture.PreviewStore) *PreviewHandler {
	return &PreviewHandler{store: store}
}

// Get writes the JPEG behind a handle. Released handles are gone.
func (h *PreviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "preview not found")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
