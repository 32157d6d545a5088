package journal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type dialect struct {
	name          string
	driver        string
	dollarParams  bool
	schema        []string
	upsertSession string
}

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id VARCHAR(36) PRIMARY KEY,
			kind VARCHAR(32) NOT NULL,
			result VARCHAR(32) NOT NULL,
			employee_id VARCHAR(255) NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			at_ms BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_at ON journal_entries (at_ms)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(128) PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			created_ms BIGINT NOT NULL,
			expires_ms BIGINT NOT NULL
		)`,
	},
	upsertSession: `INSERT INTO sessions (id, username, created_ms, expires_ms) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, created_ms = excluded.created_ms, expires_ms = excluded.expires_ms`,
}

var postgresDialect = dialect{
	name:         "postgres",
	driver:       "postgres",
	dollarParams: true,
	schema:       sqliteDialect.schema,
	upsertSession: `INSERT INTO sessions (id, username, created_ms, expires_ms) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, created_ms = EXCLUDED.created_ms, expires_ms = EXCLUDED.expires_ms`,
}

var mysqlDialect = dialect{
	name:   "mysql",
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id VARCHAR(36) PRIMARY KEY,
			kind VARCHAR(32) NOT NULL,
			result VARCHAR(32) NOT NULL,
			employee_id VARCHAR(255) NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			at_ms BIGINT NOT NULL,
			INDEX idx_journal_entries_at (at_ms)
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(128) PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			created_ms BIGINT NOT NULL,
			expires_ms BIGINT NOT NULL
		)`,
	},
	upsertSession: `INSERT INTO sessions (id, username, created_ms, expires_ms) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE username = VALUES(username), created_ms = VALUES(created_ms), expires_ms = VALUES(expires_ms)`,
}

// rebind rewrites ? placeholders to $1, $2, ... for dialects that need it.
func (d dialect) rebind(query string) string {
	if !d.dollarParams {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate creates the journal tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run journal migration: %w", err)
		}
	}
	return nil
}
