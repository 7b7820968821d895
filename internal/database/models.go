package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Admin struct {
	ID        int64
	Username  string
	Password  string
	CreatedAt pgtype.Timestamptz
}

type AdminSession struct {
	ID        pgtype.UUID
	AdminID   int64
	CreatedAt pgtype.Timestamptz
	ExpiresAt pgtype.Timestamptz
}

type AuditLog struct {
	ID           pgtype.UUID
	Action       string
	Severity     string
	Actor        pgtype.Text
	IpAddress    pgtype.Text
	UserAgent    pgtype.Text
	RowsAffected int32
	Detail       []byte
	CreatedAt    pgtype.Timestamptz
}

type Studio struct {
	ID        int64
	Name      string
	CreatedAt pgtype.Timestamptz
}

type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     pgtype.Text
	StudioID  int64
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}
