package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/sessions"
)

const (
	sessionCookieName = "attendance_kiosk_session"
	sessionDuration   = 8 * time.Hour
	cleanupInterval   = 15 * time.Minute
	repoTimeout       = 5 * time.Second
)

// Session is an authenticated admin session.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionManager handles session creation and validation
type SessionManager struct {
	secret   []byte
	repo     sessions.Repository
	sessions map[string]*Session
	mu       sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionManager creates a session manager. repo may be nil, in which case
// sessions live only in memory.
func NewSessionManager(secret string, repo sessions.Repository) *SessionManager {
	if secret == "" {
		secret = "attendance-kiosk-dev-secret-change-in-production"
	}
	sm := &SessionManager{
		secret:   []byte(secret),
		repo:     repo,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go sm.cleanupLoop()
	return sm
}

// Stop ends the background cleanup. Safe to call more than once.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() { close(sm.stop) })
}

func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-sm.stop:
			return
		case <-ticker.C:
			sm.cleanup()
		}
	}
}

func (sm *SessionManager) cleanup() {
	now := time.Now()
	sm.mu.Lock()
	for id, s := range sm.sessions {
		if now.After(s.ExpiresAt) {
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	if sm.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()
	n, err := sm.repo.DeleteExpired(ctx)
	if err != nil {
		slog.Warn("Sessions: failed to delete expired sessions", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("Sessions: deleted expired sessions", "count", n)
	}
}

// CreateSession creates a new session for username
func (sm *SessionManager) CreateSession(username string) (*Session, error) {
	idBytes := make([]byte, 32)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, err
	}
	now := time.Now()
	session := &Session{
		ID:        base64.URLEncoding.EncodeToString(idBytes),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionDuration),
	}

	sm.mu.Lock()
	sm.sessions[session.ID] = session
	sm.mu.Unlock()

	if sm.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
		defer cancel()
		if err := sm.repo.Save(ctx, sessions.Stored(*session)); err != nil {
			// The in-memory session still works until restart.
			slog.Warn("Sessions: failed to persist session", "error", err)
		}
	}

	return session, nil
}

// GetSession retrieves a session by ID, consulting the repository on a miss.
func (sm *SessionManager) GetSession(sessionID string) *Session {
	sm.mu.RLock()
	session, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()

	if !ok {
		session = sm.loadSession(sessionID)
		if session == nil {
			return nil
		}
	}

	if time.Now().After(session.ExpiresAt) {
		sm.DeleteSession(sessionID)
		return nil
	}
	return session
}

func (sm *SessionManager) loadSession(sessionID string) *Session {
	if sm.repo == nil || sessionID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()
	stored, err := sm.repo.Get(ctx, sessionID)
	if err != nil || stored == nil {
		return nil
	}
	session := &Session{
		ID:        stored.ID,
		Username:  stored.Username,
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}
	sm.mu.Lock()
	sm.sessions[session.ID] = session
	sm.mu.Unlock()
	return session
}

// DeleteSession removes a session
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if sm.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
		defer cancel()
		if err := sm.repo.Delete(ctx, sessionID); err != nil {
			slog.Warn("Sessions: failed to delete session", "error", err)
		}
	}
}

// SetSessionCookie sets the signed session cookie. The cookie is marked
// Secure when the request arrived over TLS.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, r *http.Request, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID + "." + sm.signData(session.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionFromRequest extracts the session from the cookie or a Bearer header.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *Session {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		sessionID, signature, ok := strings.Cut(cookie.Value, ".")
		if ok && sm.verifySignature(sessionID, signature) {
			if session := sm.GetSession(sessionID); session != nil {
				return session
			}
		}
	}

	if sessionID, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if session := sm.GetSession(sessionID); session != nil {
			return session
		}
	}

	return nil
}

// signData creates an HMAC signature for data
func (sm *SessionManager) signData(data string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

func (sm *SessionManager) verifySignature(data, signature string) bool {
	return hmac.Equal([]byte(signature), []byte(sm.signData(data)))
}

// SessionData is the public view of a session.
type SessionData struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Session) ToJSON() SessionData {
	return SessionData{
		SessionID: s.ID,
		Username:  s.Username,
		ExpiresAt: s.ExpiresAt.Format(time.RFC3339),
	}
}

// MarshalJSON implements json.Marshaler.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToJSON())
}
