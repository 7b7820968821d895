package database

import (
	"context"
)

const getAdminByUsername = `-- name: GetAdminByUsername :one
SELECT id, username, password, created_at FROM admins
WHERE username = $1
`

func (q *Queries) GetAdminByUsername(ctx context.Context, username string) (Admin, error) {
	row := q.db.QueryRow(ctx, getAdminByUsername, username)
	var i Admin
	err := row.Scan(&i.ID, &i.Username, &i.Password, &i.CreatedAt)
	return i, err
}

const createAdmin = `-- name: CreateAdmin :one
INSERT INTO admins (username, password)
VALUES ($1, $2)
ON CONFLICT (username) DO NOTHING
RETURNING id, username, password, created_at
`

type CreateAdminParams struct {
	Username string
	Password string
}

// CreateAdmin returns pgx.ErrNoRows when the username is already taken.
func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (Admin, error) {
	row := q.db.QueryRow(ctx, createAdmin, arg.Username, arg.Password)
	var i Admin
	err := row.Scan(&i.ID, &i.Username, &i.Password, &i.CreatedAt)
	return i, err
}
