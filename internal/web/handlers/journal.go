package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/journal"
)

// JournalReader lists recent journal entries.
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// JournalHandler serves the kiosk journal.
type JournalHandler struct {
	journal JournalReader
}

// NewJournalHandler creates a journal handler. A nil reader reports the journal as disabled.
func NewJournalHandler(j JournalReader) *JournalHandler {
	return &JournalHandler{journal: j}
}

// List returns recent entries, newest first. ?limit defaults to 50.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		respondError(w, http.StatusNotFound, "journal is disabled")
		return
	}

	limit := constants.DefaultJournalLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 1000 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}
