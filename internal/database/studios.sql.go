package database

import (
	"context"
)

const upsertStudio = `-- name: UpsertStudio :one
INSERT INTO studios (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, created_at
`

// UpsertStudio returns the studio with the given name, creating it if absent.
// The no-op update makes RETURNING yield the existing row on conflict.
func (q *Queries) UpsertStudio(ctx context.Context, name string) (Studio, error) {
	row := q.db.QueryRow(ctx, upsertStudio, name)
	var i Studio
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const listStudios = `-- name: ListStudios :many
SELECT id, name, created_at FROM studios
ORDER BY name ASC
`

func (q *Queries) ListStudios(ctx context.Context) ([]Studio, error) {
	rows, err := q.db.Query(ctx, listStudios)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Studio
	for rows.Next() {
		var i Studio
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
