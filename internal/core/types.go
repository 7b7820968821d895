package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when a lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// UnknownStudio is shown for users whose studio cannot be resolved.
const UnknownStudio = "Unknown"

// User is a contact record belonging to a studio.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	StudioID  int64     `json:"studioId"`
	Studio    string    `json:"studio"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Studio is a named grouping that users belong to.
type Studio struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Admin is an operator allowed to log in. Password holds a bcrypt hash or,
// for legacy rows, the plain value.
type Admin struct {
	ID       int64
	Username string
	Password string
}

// Session is an authenticated admin login.
type Session struct {
	ID        uuid.UUID `json:"id"`
	AdminID   int64     `json:"adminId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NewUser carries the values written by an import upsert.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	StudioID  int64
}

// RowAction is the reconciliation outcome of one import row.
type RowAction string

const (
	RowCreated RowAction = "created"
	RowUpdated RowAction = "updated"
	RowSkipped RowAction = "skipped"
)

// SearchType selects which user fields a search term is matched against.
type SearchType string

const (
	SearchEmail SearchType = "email"
	SearchPhone SearchType = "phone"
	SearchName  SearchType = "name"
)

// Valid reports whether t is one of the supported search types.
func (t SearchType) Valid() bool {
	switch t {
	case SearchEmail, SearchPhone, SearchName:
		return true
	}
	return false
}

// ListParams selects a window of users, newest first.
// Studio is an exact studio name; empty means all studios. An unknown
// name matches no users.
// Limit 0 means no limit.
type ListParams struct {
	Studio string
	Offset int
	Limit  int
}

// SearchParams is a substring search over one field group.
type SearchParams struct {
	Term   string
	Type   SearchType
	Studio string
}

// UserPage is one page of the user listing.
type UserPage struct {
	Users       []User `json:"users"`
	TotalCount  int    `json:"totalCount"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	PageSize    int    `json:"pageSize"`
}
