package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createSession = `-- name: CreateSession :exec
INSERT INTO admin_sessions (id, admin_id, expires_at)
VALUES ($1, $2, $3)
`

type CreateSessionParams struct {
	ID        pgtype.UUID
	AdminID   int64
	ExpiresAt pgtype.Timestamptz
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) error {
	_, err := q.db.Exec(ctx, createSession, arg.ID, arg.AdminID, arg.ExpiresAt)
	return err
}

const getSessionWithAdmin = `-- name: GetSessionWithAdmin :one
SELECT s.id, s.admin_id, a.username, s.created_at, s.expires_at
FROM admin_sessions s
JOIN admins a ON a.id = s.admin_id
WHERE s.id = $1
`

type GetSessionWithAdminRow struct {
	ID        pgtype.UUID
	AdminID   int64
	Username  string
	CreatedAt pgtype.Timestamptz
	ExpiresAt pgtype.Timestamptz
}

func (q *Queries) GetSessionWithAdmin(ctx context.Context, id pgtype.UUID) (GetSessionWithAdminRow, error) {
	row := q.db.QueryRow(ctx, getSessionWithAdmin, id)
	var i GetSessionWithAdminRow
	err := row.Scan(
		&i.ID,
		&i.AdminID,
		&i.Username,
		&i.CreatedAt,
		&i.ExpiresAt,
	)
	return i, err
}

const deleteSession = `-- name: DeleteSession :exec
DELETE FROM admin_sessions WHERE id = $1
`

func (q *Queries) DeleteSession(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteSession, id)
	return err
}

const deleteExpiredSessions = `-- name: DeleteExpiredSessions :execrows
DELETE FROM admin_sessions WHERE expires_at <= $1
`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now pgtype.Timestamptz) (int64, error) {
	result, err := q.db.Exec(ctx, deleteExpiredSessions, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
