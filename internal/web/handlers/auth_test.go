package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/attendance-kiosk/internal/constants"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	f := newFixture(t)
	handler := NewAuthHandler(f.ctrl, f.sm)

	body := bytes.NewBufferString(`{"username": "admin", "password": "admin123"}`)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	handler.Login(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var response LoginResponse
	parseJSONResponse(t, recorder, &response)

	if !response.Success {
		t.Error("expected success to be true")
	}
	if response.SessionID == "" {
		t.Error("expected session_id to be set")
	}
	if response.ExpiresAt == "" {
		t.Error("expected expires_at to be set")
	}
	if !f.ctrl.Admin() {
		t.Error("expected admin gate to be open")
	}
	if len(recorder.Result().Cookies()) != 1 {
		t.Error("expected a session cookie")
	}
}

func TestAuthHandler_Login_EmptyCredentials(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"username": "", "password": "admin123"}`},
		{"missing password", `{"username": "admin", "password": ""}`},
		{"missing both", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			handler := NewAuthHandler(f.ctrl, f.sm)

			req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()

			handler.Login(recorder, req)

			assertStatusCode(t, recorder, http.StatusUnauthorized)
			assertJSONError(t, recorder, constants.MsgInvalidCredentials)
			if st := f.ctrl.State(); st.LoginError != constants.MsgInvalidCredentials || st.Admin {
				t.Errorf("LoginError = %q, Admin = %v", st.LoginError, st.Admin)
			}
			if len(recorder.Result().Cookies()) != 0 {
				t.Error("no session cookie expected")
			}
		})
	}
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	f := newFixture(t)
	handler := NewAuthHandler(f.ctrl, f.sm)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString(`{invalid json}`))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	handler.Login(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid request body")
}

func TestAuthHandler_Login_WrongCredentials(t *testing.T) {
	f := newFixture(t)
	handler := NewAuthHandler(f.ctrl, f.sm)

	body := bytes.NewBufferString(`{"username": "admin", "password": "wrong"}`)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	handler.Login(recorder, req)

	assertStatusCode(t, recorder, http.StatusUnauthorized)

	var response LoginResponse
	parseJSONResponse(t, recorder, &response)

	if response.Success {
		t.Error("expected success to be false")
	}
	if response.Error != constants.MsgInvalidCredentials {
		t.Errorf("expected error %q, got %q", constants.MsgInvalidCredentials, response.Error)
	}
	if f.ctrl.Admin() {
		t.Error("expected admin gate to stay closed")
	}
	if st := f.ctrl.State(); st.LoginError != constants.MsgInvalidCredentials {
		t.Errorf("LoginError = %q", st.LoginError)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	f := newFixture(t)
	handler := NewAuthHandler(f.ctrl, f.sm)
	cookie := f.login(t)

	req := httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	req.AddCookie(cookie)
	recorder := httptest.NewRecorder()

	handler.Logout(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]bool
	parseJSONResponse(t, recorder, &result)
	if !result["success"] {
		t.Error("expected success to be true")
	}

	if f.ctrl.Admin() {
		t.Error("expected admin gate to be closed")
	}
	if f.sm.GetSessionFromRequest(req) != nil {
		t.Error("expected session to be deleted")
	}
}

func TestAuthHandler_Logout_NoSession(t *testing.T) {
	f := newFixture(t)
	handler := NewAuthHandler(f.ctrl, f.sm)

	req := httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	recorder := httptest.NewRecorder()

	handler.Logout(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]bool
	parseJSONResponse(t, recorder, &result)
	if !result["success"] {
		t.Error("expected success to be true even without session")
	}
}

func TestAuthHandler_Status(t *testing.T) {
	f := newFixture(t)
	handler := NewAuthHandler(f.ctrl, f.sm)
	cookie := sessionCookie(t, f.sm)

	tests := []struct {
		name          string
		cookie        *http.Cookie
		authenticated bool
	}{
		{"with session", cookie, true},
		{"without session", nil, false},
		{"tampered cookie", &http.Cookie{Name: cookie.Name, Value: cookie.Value + "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/auth/status", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			recorder := httptest.NewRecorder()

			handler.Status(recorder, req)

			assertStatusCode(t, recorder, http.StatusOK)

			var status StatusResponse
			parseJSONResponse(t, recorder, &status)
			if status.Authenticated != tt.authenticated {
				t.Errorf("authenticated = %v, want %v", status.Authenticated, tt.authenticated)
			}
			if tt.authenticated && status.Username != testAdminUser {
				t.Errorf("username = %q", status.Username)
			}
			if !tt.authenticated && status.ExpiresAt != "" {
				t.Error("expected expires_at to be empty")
			}
		})
	}
}
