package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/attendance-kiosk/internal/backend"
	"github.com/kozaktomas/attendance-kiosk/internal/camera"
	"github.com/kozaktomas/attendance-kiosk/internal/capture"
	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
	"github.com/kozaktomas/attendance-kiosk/internal/logger"
	"github.com/kozaktomas/attendance-kiosk/internal/roster"
	"github.com/kozaktomas/attendance-kiosk/internal/submission"
	"github.com/kozaktomas/attendance-kiosk/internal/web/middleware"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "admin123"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Admin: config.AdminConfig{Username: testAdminUser, Password: testAdminPassword},
		Catalog: config.Catalog{
			Departments: []string{"Engineering", "Finance"},
			Positions:   []string{"Software Engineer", "Accountant"},
		},
	}
}

// fakeBackend answers every backend call made through the kiosk controller.
type fakeBackend struct {
	mu         sync.Mutex
	employees  []backend.Employee
	markResult *backend.MarkResult
	markErr    error
	regErr     error
	registered []backend.EmployeeData
	images     int
	listErr    error
	deleteErr  error
	attendance []backend.AttendanceRecord
	status     *backend.EmployeeStatus
	statusErr  error
}

func (f *fakeBackend) MarkAttendance(context.Context, backend.Image) (*backend.MarkResult, error) {
	return f.markResult, f.markErr
}

func (f *fakeBackend) RegisterEmployee(_ context.Context, data backend.EmployeeData, images []backend.Image) (*backend.RegisterResult, error) {
	if f.regErr != nil {
		return nil, f.regErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, data)
	f.images = len(images)
	f.employees = append(f.employees, backend.Employee{EmployeeID: data.EmployeeID, FullName: data.FullName})
	return &backend.RegisterResult{}, nil
}

func (f *fakeBackend) ListEmployees(context.Context) ([]backend.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]backend.Employee, len(f.employees))
	copy(out, f.employees)
	return out, nil
}

func (f *fakeBackend) DeleteEmployee(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	var kept []backend.Employee
	for _, e := range f.employees {
		if e.EmployeeID != id {
			kept = append(kept, e)
		}
	}
	f.employees = kept
	return nil
}

func (f *fakeBackend) ListAttendance(context.Context, string) ([]backend.AttendanceRecord, error) {
	return f.attendance, nil
}

func (f *fakeBackend) EmployeeStatus(context.Context, string) (*backend.EmployeeStatus, error) {
	return f.status, f.statusErr
}

// fixture wires a kiosk controller to a pattern camera and a fake backend.
type fixture struct {
	cfg      *config.Config
	ctrl     *kiosk.Controller
	cam      *camera.Manager
	device   *camera.PatternDevice
	backend  *fakeBackend
	previews *capture.PreviewStore
	sm       *middleware.SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	cfg := testConfig()
	device := &camera.PatternDevice{}
	cam := camera.NewManager(device, camera.StreamConfig{Width: 32, Height: 24}, log)
	previews := capture.NewPreviewStore()
	capturer := capture.NewCapturer(previews)
	fb := &fakeBackend{}
	orch := submission.New(fb, capturer, &cfg.Catalog, nil, log)
	batch := capture.NewBatch(cam, capturer, log)
	ctrl := kiosk.NewController(cam, batch, orch, roster.New(fb, log), fb, kiosk.Options{
		AdminUsername: testAdminUser,
		AdminPassword: testAdminPassword,
	}, log)
	sm := middleware.NewSessionManager("test-secret", nil)
	t.Cleanup(func() {
		sm.Stop()
		ctrl.Close()
	})
	return &fixture{cfg: cfg, ctrl: ctrl, cam: cam, device: device, backend: fb, previews: previews, sm: sm}
}

// login opens the admin gate and returns a cookie for the new session.
func (f *fixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	if err := f.ctrl.Login(&kiosk.Credentials{Username: testAdminUser, Password: testAdminPassword}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return sessionCookie(t, f.sm)
}

func (f *fixture) startCamera(t *testing.T) {
	t.Helper()
	if err := f.ctrl.StartCamera(context.Background()); err != nil {
		t.Fatalf("StartCamera() error = %v", err)
	}
}

func (f *fixture) captureN(t *testing.T, n int) {
	t.Helper()
	for i := range n {
		if _, err := f.ctrl.CaptureEnrollment(); err != nil {
			t.Fatalf("capture %d: %v", i+1, err)
		}
	}
}

// sessionCookie creates a session and returns the cookie the browser would hold.
func sessionCookie(t *testing.T, sm *middleware.SessionManager) *http.Cookie {
	t.Helper()
	session, err := sm.CreateSession(testAdminUser)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	recorder := httptest.NewRecorder()
	sm.SetSessionCookie(recorder, httptest.NewRequest("GET", "/", nil), session)
	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	return cookies[0]
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
