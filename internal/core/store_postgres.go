package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	db "github.com/JonMunkholm/StudioUsers/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresStore implements Store on top of the database package.
// Fixed statements go through the generated Queries; listing and search
// build their SQL with a WhereBuilder.
type PostgresStore struct {
	conn    db.DBTX
	queries *db.Queries
}

// NewPostgresStore wraps a pool, connection or transaction.
func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{conn: conn, queries: db.New(conn)}
}

var _ Store = (*PostgresStore)(nil)

const userColumns = `u.id, u.first_name, u.last_name, u.email, COALESCE(u.phone, ''),
	u.studio_id, COALESCE(s.name, 'Unknown'), u.created_at, u.updated_at`

const userFrom = ` FROM users u LEFT JOIN studios s ON s.id = u.studio_id`

const userOrder = ` ORDER BY u.created_at DESC, u.id DESC`

// UpsertStudio implements StudioStore.
func (p *PostgresStore) UpsertStudio(ctx context.Context, name string) (Studio, error) {
	row, err := p.queries.UpsertStudio(ctx, name)
	if err != nil {
		return Studio{}, fmt.Errorf("upsert studio %q: %w", name, err)
	}
	return Studio{ID: row.ID, Name: row.Name}, nil
}

// ListStudios implements StudioStore.
func (p *PostgresStore) ListStudios(ctx context.Context) ([]Studio, error) {
	rows, err := p.queries.ListStudios(ctx)
	if err != nil {
		return nil, fmt.Errorf("list studios: %w", err)
	}
	studios := make([]Studio, len(rows))
	for i, r := range rows {
		studios[i] = Studio{ID: r.ID, Name: r.Name}
	}
	return studios, nil
}

// UpsertUser implements UserStore.
func (p *PostgresStore) UpsertUser(ctx context.Context, u NewUser) (RowAction, error) {
	row, err := p.queries.UpsertUser(ctx, db.UpsertUserParams{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     ToPgText(u.Phone),
		StudioID:  u.StudioID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return RowSkipped, nil
	}
	if err != nil {
		return RowSkipped, fmt.Errorf("upsert user %q: %w", u.Email, err)
	}
	if row.Inserted {
		return RowCreated, nil
	}
	return RowUpdated, nil
}

// UsersByEmail implements UserStore.
func (p *PostgresStore) UsersByEmail(ctx context.Context, emails []string) (map[string]User, error) {
	out := make(map[string]User)
	if len(emails) == 0 {
		return out, nil
	}
	rows, err := p.queries.ListUsersByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("lookup users by email: %w", err)
	}
	for _, r := range rows {
		out[r.Email] = User{
			ID:        r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Phone:     FromPgText(r.Phone),
			StudioID:  r.StudioID,
			CreatedAt: FromPgTimestamptz(r.CreatedAt),
			UpdatedAt: FromPgTimestamptz(r.UpdatedAt),
		}
	}
	return out, nil
}

// ListUsers implements UserStore.
func (p *PostgresStore) ListUsers(ctx context.Context, lp ListParams) ([]User, int, error) {
	wb := NewWhereBuilder()
	wb.Add("s.name", lp.Studio)
	where, args := wb.Build()

	var total int
	if err := p.conn.QueryRow(ctx, "SELECT count(*)"+userFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := "SELECT " + userColumns + userFrom + where + userOrder
	if lp.Limit > 0 {
		query += " LIMIT " + wb.Arg(lp.Limit)
	}
	if lp.Offset > 0 {
		query += " OFFSET " + wb.Arg(lp.Offset)
	}
	_, args = wb.Build()

	users, err := p.queryUsers(ctx, query, args)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// SearchUsers implements UserStore.
func (p *PostgresStore) SearchUsers(ctx context.Context, sp SearchParams) ([]User, error) {
	wb := NewWhereBuilder()
	switch sp.Type {
	case SearchEmail:
		wb.AddSearch(sp.Term, "u.email")
	case SearchPhone:
		wb.AddSearch(sp.Term, "u.phone")
	case SearchName:
		wb.AddSearch(sp.Term, "u.first_name", "u.last_name")
	default:
		return nil, fmt.Errorf("search users: unsupported search type %q", sp.Type)
	}
	wb.Add("s.name", sp.Studio)
	where, args := wb.Build()

	users, err := p.queryUsers(ctx, "SELECT "+userColumns+userFrom+where+userOrder, args)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// DeleteUsers implements UserStore.
func (p *PostgresStore) DeleteUsers(ctx context.Context, ids []int64) (int, error) {
	n, err := p.queries.DeleteUsers(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	return int(n), nil
}

func (p *PostgresStore) queryUsers(ctx context.Context, query string, args []interface{}) ([]User, error) {
	rows, err := p.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID,
			&u.FirstName,
			&u.LastName,
			&u.Email,
			&u.Phone,
			&u.StudioID,
			&u.Studio,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AdminByUsername implements AdminStore.
func (p *PostgresStore) AdminByUsername(ctx context.Context, username string) (Admin, error) {
	row, err := p.queries.GetAdminByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return Admin{}, ErrNotFound
	}
	if err != nil {
		return Admin{}, fmt.Errorf("get admin: %w", err)
	}
	return Admin{ID: row.ID, Username: row.Username, Password: row.Password}, nil
}

// CreateAdmin implements AdminStore.
func (p *PostgresStore) CreateAdmin(ctx context.Context, username, password string) (Admin, bool, error) {
	row, err := p.queries.CreateAdmin(ctx, db.CreateAdminParams{Username: username, Password: password})
	if errors.Is(err, pgx.ErrNoRows) {
		return Admin{}, false, nil
	}
	if err != nil {
		return Admin{}, false, fmt.Errorf("create admin: %w", err)
	}
	return Admin{ID: row.ID, Username: row.Username, Password: row.Password}, true, nil
}

// CreateSession implements SessionStore.
func (p *PostgresStore) CreateSession(ctx context.Context, s Session) error {
	err := p.queries.CreateSession(ctx, db.CreateSessionParams{
		ID:        ToPgUUID(s.ID),
		AdminID:   s.AdminID,
		ExpiresAt: ToPgTimestamptz(s.ExpiresAt),
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SessionByID implements SessionStore.
func (p *PostgresStore) SessionByID(ctx context.Context, id uuid.UUID) (Session, error) {
	row, err := p.queries.GetSessionWithAdmin(ctx, ToPgUUID(id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return Session{
		ID:        uuid.UUID(row.ID.Bytes),
		AdminID:   row.AdminID,
		Username:  row.Username,
		CreatedAt: FromPgTimestamptz(row.CreatedAt),
		ExpiresAt: FromPgTimestamptz(row.ExpiresAt),
	}, nil
}

// DeleteSession implements SessionStore.
func (p *PostgresStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := p.queries.DeleteSession(ctx, ToPgUUID(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions implements SessionStore.
func (p *PostgresStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	n, err := p.queries.DeleteExpiredSessions(ctx, ToPgTimestamptz(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(n), nil
}

// InsertAudit implements AuditStore.
func (p *PostgresStore) InsertAudit(ctx context.Context, e AuditEntry) (AuditEntry, error) {
	var detail []byte
	if len(e.Detail) > 0 {
		var err error
		if detail, err = json.Marshal(e.Detail); err != nil {
			detail = nil
		}
	}

	row, err := p.queries.InsertAuditLog(ctx, db.InsertAuditLogParams{
		Action:       string(e.Action),
		Severity:     string(e.Severity),
		Actor:        ToPgText(e.Actor),
		IpAddress:    ToPgText(e.IPAddress),
		UserAgent:    ToPgText(e.UserAgent),
		RowsAffected: int32(e.RowsAffected),
		Detail:       detail,
	})
	if err != nil {
		return AuditEntry{}, fmt.Errorf("insert audit log: %w", err)
	}
	e.ID = PgUUIDToString(row.ID)
	e.CreatedAt = FromPgTimestamptz(row.CreatedAt)
	return e, nil
}

// ListAudit implements AuditStore.
func (p *PostgresStore) ListAudit(ctx context.Context, limit, offset int) ([]AuditEntry, int, error) {
	total, err := p.queries.CountAuditLog(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit log: %w", err)
	}

	rows, err := p.queries.ListAuditLog(ctx, db.ListAuditLogParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list audit log: %w", err)
	}

	entries := make([]AuditEntry, 0, len(rows))
	for _, r := range rows {
		e := AuditEntry{
			ID:           PgUUIDToString(r.ID),
			Action:       AuditAction(r.Action),
			Severity:     AuditSeverity(r.Severity),
			Actor:        FromPgText(r.Actor),
			IPAddress:    FromPgText(r.IpAddress),
			UserAgent:    FromPgText(r.UserAgent),
			RowsAffected: int(r.RowsAffected),
			CreatedAt:    FromPgTimestamptz(r.CreatedAt),
		}
		if len(r.Detail) > 0 {
			_ = json.Unmarshal(r.Detail, &e.Detail)
		}
		entries = append(entries, e)
	}
	return entries, int(total), nil
}
