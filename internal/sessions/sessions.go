// Package sessions defines how admin web sessions are persisted. The web
// layer consumes a Repository; storage packages implement it.
package sessions

import (
	"context"
	"time"
)

// Stored is the persisted form of an admin session.
type Stored struct {
	ID        string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Repository persists sessions so admins stay logged in across restarts.
// Get returns nil, nil for an unknown id.
type Repository interface {
	Save(ctx context.Context, s Stored) error
	Get(ctx context.Context, id string) (*Stored, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
