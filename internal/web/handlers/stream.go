package handlers

import (
	"bytes"
	"image"
	"image/jpeg"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
)

const (
	previewQuality = 70
	writeWait      = 5 * time.Second
)

// FrameSource is a camera the preview reads from.
type FrameSource interface {
	Active() bool
	Frame() (image.Image, error)
}

// StreamHandler pushes live preview frames to the browser over a websocket.
// Frames are encoded independently of the capture path.
type StreamHandler struct {
	source   FrameSource
	interval time.Duration
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a preview stream handler.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{
		source:   source,
		interval: time.Second / constants.PreviewFPS,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     sameHostOrigin,
		},
	}
}

// sameHostOrigin accepts requests without an Origin and those from the serving host.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host || u.Hostname() == "localhost" || u.Hostname() == "127.0.0.1"
}

// Stream sends binary JPEG messages until the camera stops or the client leaves.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if !h.source.Active() {
		respondError(w, http.StatusConflict, "camera is not running")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Stream: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Drain client messages so close frames are noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var buf bytes.Buffer
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		if !h.source.Active() {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "camera stopped"),
				time.Now().Add(writeWait))
			return
		}

		img, err := h.source.Frame()
		if err != nil {
			// No frame yet or the session just closed; the next tick decides.
			continue
		}
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: previewQuality}); err != nil {
			slog.Debug("Stream: preview encode failed", "error", err)
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
			slog.Debug("Stream: client write failed", "error", err)
			return
		}
	}
}
