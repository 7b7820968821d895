package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const upsertUser = `-- name: UpsertUser :one
INSERT INTO users (first_name, last_name, email, phone, studio_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO UPDATE
SET phone = EXCLUDED.phone,
    studio_id = EXCLUDED.studio_id,
    updated_at = now()
WHERE (users.phone IS NULL OR users.phone = '')
  AND EXCLUDED.phone IS NOT NULL
  AND EXCLUDED.phone <> ''
RETURNING id, (xmax = 0) AS inserted
`

type UpsertUserParams struct {
	FirstName string
	LastName  string
	Email     string
	Phone     pgtype.Text
	StudioID  int64
}

type UpsertUserRow struct {
	ID       int64
	Inserted bool
}

// UpsertUser inserts a new user or fills in the phone of an existing user
// whose phone is empty. When the existing row is left untouched no row is
// returned and the error is pgx.ErrNoRows.
func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (UpsertUserRow, error) {
	row := q.db.QueryRow(ctx, upsertUser,
		arg.FirstName,
		arg.LastName,
		arg.Email,
		arg.Phone,
		arg.StudioID,
	)
	var i UpsertUserRow
	err := row.Scan(&i.ID, &i.Inserted)
	return i, err
}

const listUsersByEmails = `-- name: ListUsersByEmails :many
SELECT id, first_name, last_name, email, phone, studio_id, created_at, updated_at
FROM users
WHERE email = ANY($1::text[])
`

func (q *Queries) ListUsersByEmails(ctx context.Context, emails []string) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsersByEmails, emails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(
			&i.ID,
			&i.FirstName,
			&i.LastName,
			&i.Email,
			&i.Phone,
			&i.StudioID,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const deleteUsers = `-- name: DeleteUsers :execrows
DELETE FROM users
WHERE id = ANY($1::bigint[])
`

func (q *Queries) DeleteUsers(ctx context.Context, ids []int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteUsers, ids)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
