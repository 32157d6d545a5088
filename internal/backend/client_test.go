package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c, err := New(server.URL, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func setupMockBackend(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range handlers {
		mux.HandleFunc(pattern, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	for _, raw := range []string{"localhost:8000", "ftp://backend", "://bad"} {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q): expected error", raw)
		}
	}
}

func TestClient_ResolveURL(t *testing.T) {
	c, err := New("http://localhost:8000/")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		segments []string
		want     string
	}{
		{[]string{"attendance/mark"}, "http://localhost:8000/attendance/mark"},
		{[]string{"admin/attendance?date=2024-05-01"}, "http://localhost:8000/admin/attendance?date=2024-05-01"},
		{[]string{"admin/employees/EMP%2F1"}, "http://localhost:8000/admin/employees/EMP%2F1"},
	}
	for _, tt := range tests {
		if got := c.resolveURL(tt.segments...); got != tt.want {
			t.Errorf("resolveURL(%v) = %s, want %s", tt.segments, got, tt.want)
		}
	}
}

func TestClient_MarkAttendance_Success(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"POST /attendance/mark": func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("expected multipart body: %v", err)
			}
			files := r.MultipartForm.File["image"]
			if len(files) != 1 {
				t.Fatalf("expected one image part, got %d", len(files))
			}
			if files[0].Filename != "attendance.jpg" {
				t.Errorf("expected attendance.jpg, got %s", files[0].Filename)
			}
			if ct := files[0].Header.Get("Content-Type"); ct != "image/jpeg" {
				t.Errorf("expected image/jpeg part, got %s", ct)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"message":        "Attendance marked successfully",
				"employee_id":    "EMP001",
				"employee_name":  "Ayesha Khan",
				"timestamp":      "2024-05-01T09:12:33.123456",
				"status":         "late",
				"status_message": "Late Arrival - 12 minutes late",
				"similarity":     0.87,
			})
		},
	})

	result, err := testClient(t, server).MarkAttendance(context.Background(), Image{Filename: "attendance.jpg", Data: []byte("jpeg")})
	if err != nil {
		t.Fatalf("MarkAttendance() error: %v", err)
	}

	if result.EmployeeID != "EMP001" || result.EmployeeName != "Ayesha Khan" {
		t.Errorf("unexpected employee: %+v", result)
	}
	if result.Status != StatusLate {
		t.Errorf("expected late, got %s", result.Status)
	}
	want := time.Date(2024, 5, 1, 9, 12, 33, 123456000, time.UTC)
	if !result.Timestamp.Equal(want) {
		t.Errorf("expected %v, got %v", want, result.Timestamp.Time)
	}
	if result.Similarity != 0.87 {
		t.Errorf("expected similarity 0.87, got %v", result.Similarity)
	}
}

func TestClient_MarkAttendance_Rejected(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"POST /attendance/mark": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Face not recognized. Please contact admin to register.",
			})
		},
	})

	_, err := testClient(t, server).MarkAttendance(context.Background(), Image{Filename: "attendance.jpg"})

	var rejected *ServerRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ServerRejectedError, got %v", err)
	}
	if rejected.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rejected.StatusCode)
	}
	if Detail(err) != "Face not recognized. Please contact admin to register." {
		t.Errorf("unexpected detail %q", Detail(err))
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	c := testClient(t, server)
	server.Close()

	_, err := c.MarkAttendance(context.Background(), Image{Filename: "attendance.jpg"})
	if !IsTransportError(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if Detail(err) != "" {
		t.Errorf("expected no detail on transport error, got %q", Detail(err))
	}
}

func TestClient_MalformedResponseIsTransportError(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"GET /admin/employees": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>proxy error</html>"))
		},
	})

	_, err := testClient(t, server).ListEmployees(context.Background())
	if !IsTransportError(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestClient_RegisterEmployee_SendsOrderedImages(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"POST /admin/register-employee": func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("expected multipart body: %v", err)
			}
			var data EmployeeData
			if err := json.Unmarshal([]byte(r.FormValue("employee_data")), &data); err != nil {
				t.Fatalf("employee_data is not JSON: %v", err)
			}
			if data.EmployeeID != "EMP002" || data.Department != "Finance" {
				t.Errorf("unexpected employee data %+v", data)
			}
			files := r.MultipartForm.File["images"]
			if len(files) != 3 {
				t.Fatalf("expected 3 images, got %d", len(files))
			}
			for i, name := range []string{"capture_1.jpg", "capture_2.jpg", "capture_3.jpg"} {
				if files[i].Filename != name {
					t.Errorf("image %d: expected %s, got %s", i, name, files[i].Filename)
				}
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "Employee registered successfully"})
		},
	})

	images := []Image{
		{Filename: "capture_1.jpg", Data: []byte("a")},
		{Filename: "capture_2.jpg", Data: []byte("b")},
		{Filename: "capture_3.jpg", Data: []byte("c")},
	}
	data := EmployeeData{EmployeeID: "EMP002", FullName: "Bilal Ahmed", Email: "bilal@example.com", Department: "Finance", Position: "Manager"}

	result, err := testClient(t, server).RegisterEmployee(context.Background(), data, images)
	if err != nil {
		t.Fatalf("RegisterEmployee() error: %v", err)
	}
	if result.Message != "Employee registered successfully" {
		t.Errorf("unexpected message %q", result.Message)
	}
}

func TestClient_RegisterEmployee_ValidationDetailList(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"POST /admin/register-employee": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]string{{"msg": "field required"}, {"msg": "value is not a valid email address"}},
			})
		},
	})

	_, err := testClient(t, server).RegisterEmployee(context.Background(), EmployeeData{}, nil)
	if got := Detail(err); got != "field required; value is not a valid email address" {
		t.Errorf("unexpected detail %q", got)
	}
}

func TestClient_ListEmployees(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"GET /admin/employees": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{
				{"_id": "66a", "employee_id": "EMP001", "full_name": "Ayesha Khan", "email": "a@example.com",
					"department": "Finance", "position": nil, "created_at": "2024-04-30T10:00:00"},
				{"_id": "66b", "employee_id": "EMP002", "full_name": "Bilal Ahmed", "email": "b@example.com"},
			})
		},
	})

	employees, err := testClient(t, server).ListEmployees(context.Background())
	if err != nil {
		t.Fatalf("ListEmployees() error: %v", err)
	}
	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}
	if employees[0].ID != "66a" || employees[0].Position != "" {
		t.Errorf("unexpected first employee %+v", employees[0])
	}
	if !employees[1].CreatedAt.IsZero() {
		t.Errorf("expected zero created_at for missing field")
	}
}

func TestClient_DeleteEmployee(t *testing.T) {
	var gotPath string
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"DELETE /admin/employees/{id}": func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.PathValue("id")
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
		},
	})

	if err := testClient(t, server).DeleteEmployee(context.Background(), "EMP 7"); err != nil {
		t.Fatalf("DeleteEmployee() error: %v", err)
	}
	if gotPath != "EMP 7" {
		t.Errorf("expected id 'EMP 7', got %q", gotPath)
	}
}

func TestClient_DeleteEmployee_NotFound(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"DELETE /admin/employees/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Employee not found"})
		},
	})

	err := testClient(t, server).DeleteEmployee(context.Background(), "EMP404")
	if !IsNotFoundError(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestClient_ListAttendance_DateFilter(t *testing.T) {
	var gotQuery string
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"GET /admin/attendance": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			writeJSON(w, http.StatusOK, []map[string]any{
				{"employee_id": "EMP001", "employee_name": "Ayesha Khan", "timestamp": "2024-05-01T04:12:00", "status": "on-time"},
			})
		},
	})
	c := testClient(t, server)

	records, err := c.ListAttendance(context.Background(), "2024-05-01")
	if err != nil {
		t.Fatalf("ListAttendance() error: %v", err)
	}
	if gotQuery != "date=2024-05-01" {
		t.Errorf("expected date query, got %q", gotQuery)
	}
	if len(records) != 1 || records[0].Status != StatusOnTime {
		t.Errorf("unexpected records %+v", records)
	}

	if _, err := c.ListAttendance(context.Background(), ""); err != nil {
		t.Fatalf("ListAttendance() without date error: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("expected no query without date, got %q", gotQuery)
	}
}

func TestClient_ListAttendance_InvalidDate(t *testing.T) {
	c, _ := New("http://localhost:8000")
	if _, err := c.ListAttendance(context.Background(), "01/05/2024"); err == nil {
		t.Error("expected invalid date error")
	}
}

func TestClient_EmployeeStatus(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"GET /admin/employee-status/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"employee_id": r.PathValue("id"), "employee_name": "Ayesha Khan",
				"total_days": 20, "present_count": 18, "late_count": 3, "early_leave_count": 1,
				"absent_count": 2, "attendance_rate": 90.0,
				"recent_records": []map[string]string{{"timestamp": "2024-05-01T04:12:00Z", "status": "late"}},
			})
		},
	})

	status, err := testClient(t, server).EmployeeStatus(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("EmployeeStatus() error: %v", err)
	}
	if status.EmployeeID != "EMP001" || status.TotalDays != 20 || status.AttendanceRate != 90 {
		t.Errorf("unexpected status %+v", status)
	}
	if len(status.RecentRecords) != 1 || status.RecentRecords[0].Status != StatusLate {
		t.Errorf("unexpected recent records %+v", status.RecentRecords)
	}
}

func TestClient_SetCaptureDir(t *testing.T) {
	dir := t.TempDir()
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"GET /admin/employees": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []any{})
		},
	})
	c := testClient(t, server)
	if err := c.SetCaptureDir(dir); err != nil {
		t.Fatalf("SetCaptureDir() error: %v", err)
	}

	if _, err := c.ListEmployees(context.Background()); err != nil {
		t.Fatalf("ListEmployees() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 captured response, got %d", len(entries))
	}
}
