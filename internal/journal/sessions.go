package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/sessions"
)

// SessionRepository stores admin web sessions in the journal database.
type SessionRepository struct {
	store *Store
}

// Sessions returns the store's session repository.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{store: s}
}

var _ sessions.Repository = (*SessionRepository)(nil)

// Save inserts or replaces a session.
func (r *SessionRepository) Save(ctx context.Context, s sessions.Stored) error {
	query := r.store.dialect.rebind(r.store.dialect.upsertSession)
	if _, err := r.store.db.ExecContext(ctx, query, s.ID, s.Username, s.CreatedAt.UnixMilli(), s.ExpiresAt.UnixMilli()); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get returns the session or nil when it does not exist.
func (r *SessionRepository) Get(ctx context.Context, id string) (*sessions.Stored, error) {
	query := r.store.dialect.rebind(`SELECT id, username, created_ms, expires_ms FROM sessions WHERE id = ?`)
	var (
		s                  sessions.Stored
		createdMS, expires int64
	)
	err := r.store.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Username, &createdMS, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	s.CreatedAt = time.UnixMilli(createdMS)
	s.ExpiresAt = time.UnixMilli(expires)
	return &s, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query := r.store.dialect.rebind(`DELETE FROM sessions WHERE id = ?`)
	if _, err := r.store.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and returns how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := r.store.dialect.rebind(`DELETE FROM sessions WHERE expires_ms < ?`)
	res, err := r.store.db.ExecContext(ctx, query, time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted sessions: %w", err)
	}
	return n, nil
}
