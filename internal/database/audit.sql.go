package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertAuditLog = `-- name: InsertAuditLog :one
INSERT INTO audit_log (action, severity, actor, ip_address, user_agent, rows_affected, detail)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at
`

type InsertAuditLogParams struct {
	Action       string
	Severity     string
	Actor        pgtype.Text
	IpAddress    pgtype.Text
	UserAgent    pgtype.Text
	RowsAffected int32
	Detail       []byte
}

type InsertAuditLogRow struct {
	ID        pgtype.UUID
	CreatedAt pgtype.Timestamptz
}

func (q *Queries) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (InsertAuditLogRow, error) {
	row := q.db.QueryRow(ctx, insertAuditLog,
		arg.Action,
		arg.Severity,
		arg.Actor,
		arg.IpAddress,
		arg.UserAgent,
		arg.RowsAffected,
		arg.Detail,
	)
	var i InsertAuditLogRow
	err := row.Scan(&i.ID, &i.CreatedAt)
	return i, err
}

const listAuditLog = `-- name: ListAuditLog :many
SELECT id, action, severity, actor, ip_address, user_agent, rows_affected, detail, created_at
FROM audit_log
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

type ListAuditLogParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListAuditLog(ctx context.Context, arg ListAuditLogParams) ([]AuditLog, error) {
	rows, err := q.db.Query(ctx, listAuditLog, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuditLog
	for rows.Next() {
		var i AuditLog
		if err := rows.Scan(
			&i.ID,
			&i.Action,
			&i.Severity,
			&i.Actor,
			&i.IpAddress,
			&i.UserAgent,
			&i.RowsAffected,
			&i.Detail,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countAuditLog = `-- name: CountAuditLog :one
SELECT count(*) FROM audit_log
`

func (q *Queries) CountAuditLog(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countAuditLog)
	var count int64
	err := row.Scan(&count)
	return count, err
}
