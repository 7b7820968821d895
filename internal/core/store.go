package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StudioStore persists studios.
type StudioStore interface {
	// UpsertStudio returns the studio named name, creating it atomically if absent.
	UpsertStudio(ctx context.Context, name string) (Studio, error)
	ListStudios(ctx context.Context) ([]Studio, error)
}

// UserStore persists users.
type UserStore interface {
	// UpsertUser applies the reconciliation policy to u in one atomic step
	// and reports what happened.
	UpsertUser(ctx context.Context, u NewUser) (RowAction, error)
	// UsersByEmail returns the existing users among emails, keyed by email.
	UsersByEmail(ctx context.Context, emails []string) (map[string]User, error)
	// ListUsers returns a window of users, newest first, and the total
	// number of users matching the studio filter.
	ListUsers(ctx context.Context, p ListParams) ([]User, int, error)
	// SearchUsers returns every match, newest first.
	SearchUsers(ctx context.Context, p SearchParams) ([]User, error)
	// DeleteUsers removes the users with the given ids and returns how many existed.
	DeleteUsers(ctx context.Context, ids []int64) (int, error)
}

// AdminStore persists admin accounts.
type AdminStore interface {
	AdminByUsername(ctx context.Context, username string) (Admin, error)
	// CreateAdmin reports false when the username already exists.
	CreateAdmin(ctx context.Context, username, password string) (Admin, bool, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error
	SessionByID(ctx context.Context, id uuid.UUID) (Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// AuditStore persists audit entries.
type AuditStore interface {
	InsertAudit(ctx context.Context, e AuditEntry) (AuditEntry, error)
	ListAudit(ctx context.Context, limit, offset int) ([]AuditEntry, int, error)
}

// Store is everything the Service needs from persistence.
type Store interface {
	StudioStore
	UserStore
	AdminStore
	SessionStore
	AuditStore
}
