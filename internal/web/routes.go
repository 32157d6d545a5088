package web

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/attendance-kiosk/internal/capture"
	"github.com/kozaktomas/attendance-kiosk/internal/web/handlers"
	"github.com/kozaktomas/attendance-kiosk/internal/web/middleware"
	"github.com/kozaktomas/attendance-kiosk/internal/web/static"
)

func (s *Server) setupRoutes() {
	sm := s.sessionManager
	k := s.deps.Kiosk

	healthHandler := handlers.NewHealthHandler(s.deps.Version)
	authHandler := handlers.NewAuthHandler(k, sm)
	kioskHandler := handlers.NewKioskHandler(k, sm)
	enrollHandler := handlers.NewEnrollHandler(k)
	employeesHandler := handlers.NewEmployeesHandler(k)
	attendanceHandler := handlers.NewAttendanceHandler(k)
	journalHandler := handlers.NewJournalHandler(s.deps.Journal)
	catalogHandler := handlers.NewCatalogHandler(s.config)
	previewHandler := handlers.NewPreviewHandler(s.deps.Previews)
	streamHandler := handlers.NewStreamHandler(s.deps.Camera)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", healthHandler.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// The preview stream is long lived and stays outside the request timeout.
		r.Get("/camera/stream", streamHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(2 * time.Minute))

			// Kiosk screen
			r.Get("/view", kioskHandler.GetView)
			r.Post("/view", kioskHandler.SwitchView)
			r.Post("/camera/start", kioskHandler.StartCamera)
			r.Post("/camera/stop", kioskHandler.StopCamera)
			r.Get("/camera/status", kioskHandler.CameraStatus)
			r.Post("/verify", kioskHandler.Verify)
			r.Post("/outcome/dismiss", kioskHandler.DismissOutcome)

			// Admin gate
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/status", authHandler.Status)

			// Admin tabs
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(sm))

				r.Get("/enroll", enrollHandler.Get)
				r.Post("/enroll/capture", enrollHandler.Capture)
				r.Delete("/enroll/frames/{index}", enrollHandler.RemoveFrame)
				r.Post("/enroll/reset", enrollHandler.Reset)
				r.Post("/enroll/submit", enrollHandler.Submit)

				r.Get("/employees", employeesHandler.List)
				r.Delete("/employees/{id}", employeesHandler.Delete)

				r.Get("/attendance", attendanceHandler.List)
				r.Get("/attendance/export", attendanceHandler.Export)
				r.Get("/employee-status/{id}", attendanceHandler.EmployeeStatus)

				r.Get("/journal", journalHandler.List)
				r.Get("/catalog", catalogHandler.Get)
			})
		})
	})

	// Captured frame display handles
	s.router.Get(capture.PreviewPath+"{id}", previewHandler.Get)

	// Serve static files for frontend (SPA)
	s.router.Get("/*", s.serveSPA)
}

var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "application/javascript; charset=utf-8",
	".json":  "application/json",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
}

func contentTypeFor(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		if ct, ok := contentTypes[path[i:]]; ok {
			return ct
		}
	}
	return "application/octet-stream"
}

// serveSPA serves the embedded kiosk UI, falling back to index.html for client routes.
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	fs := static.GetFileSystem()
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	if f, err := fs.Open(path); err == nil {
		defer f.Close()
		if stat, err := f.Stat(); err == nil && !stat.IsDir() {
			w.Header().Set("Content-Type", contentTypeFor(path))
			if strings.HasPrefix(path, "/assets/") {
				w.Header().Set("Cache-Control", "public, max-age=3600")
			}
			w.WriteHeader(http.StatusOK)
			io.Copy(w, f)
			return
		}
	}

	if strings.HasPrefix(path, "/assets/") {
		http.NotFound(w, r)
		return
	}

	indexFile, err := fs.Open("/index.html")
	if err != nil {
		http.Error(w, "kiosk UI is not available", http.StatusInternalServerError)
		return
	}
	defer indexFile.Close()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, indexFile)
}
