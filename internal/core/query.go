package core

import (
	"context"
	"math"
	"strings"
	"time"
)

// maxOffset bounds row offsets. No table gets near it, so any offset beyond
// it is past the end.
const maxOffset = math.MaxInt32

// TotalPages returns ceil(total/pageSize); 0 when there is nothing to show.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ListUsers returns every user in studio, newest first. A studio of "" or
// "all" lists every studio.
func (s *Service) ListUsers(ctx context.Context, studio string) ([]User, error) {
	users, _, err := s.store.ListUsers(ctx, ListParams{Studio: normalizeStudioFilter(studio)})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// pageWindow normalizes a 1-based page and its size and returns the offset
// of the page's first row. page < 1 means the first page; pageSize < 1 means
// DefaultPageSize and sizes above MaxPageSize are capped. Offsets that would
// overflow are clamped to maxOffset.
func pageWindow(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	offset := maxOffset
	if page-1 <= maxOffset/pageSize {
		offset = (page - 1) * pageSize
	}
	return page, pageSize, offset
}

// ListUsersPage returns one page of users, newest first; see pageWindow for
// how page and pageSize are normalized. A studio of "" or "all" lists every
// studio. Pages past the end are empty.
func (s *Service) ListUsersPage(ctx context.Context, page, pageSize int, studio string) (UserPage, error) {
	page, pageSize, offset := pageWindow(page, pageSize)

	users, total, err := s.store.ListUsers(ctx, ListParams{
		Studio: normalizeStudioFilter(studio),
		Offset: offset,
		Limit:  pageSize,
	})
	if err != nil {
		return UserPage{}, err
	}
	if users == nil {
		users = []User{}
	}

	return UserPage{
		Users:       users,
		TotalCount:  total,
		TotalPages:  TotalPages(total, pageSize),
		CurrentPage: page,
		PageSize:    pageSize,
	}, nil
}

// SearchUsers returns every user whose fields selected by searchType contain
// term, newest first. For phone searches the term is normalized like stored
// phones, unless normalization leaves nothing.
func (s *Service) SearchUsers(ctx context.Context, term string, searchType SearchType, studio string) ([]User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, newValidationError("searchTerm", "", "Search term is required")
	}
	if !searchType.Valid() {
		return nil, newValidationError("searchType", string(searchType), "Invalid search type")
	}
	if searchType == SearchPhone {
		if n := NormalizePhone(term); n != "" {
			term = n
		}
	}

	users, err := s.store.SearchUsers(ctx, SearchParams{
		Term:   term,
		Type:   searchType,
		Studio: normalizeStudioFilter(studio),
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// ExportUsers materializes the rows for a CSV export: a search when both
// term and searchType are given, otherwise the full (studio-filtered) list.
func (s *Service) ExportUsers(ctx context.Context, term string, searchType SearchType, studio string) ([]User, error) {
	var users []User
	var err error
	if strings.TrimSpace(term) != "" && searchType != "" {
		users, err = s.SearchUsers(ctx, term, searchType, studio)
	} else {
		users, err = s.ListUsers(ctx, studio)
	}
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}

	s.logAudit(ctx, ActionExport, len(users), map[string]any{
		"searchTerm":   term,
		"searchType":   string(searchType),
		"studioFilter": studio,
	})
	return users, nil
}

// ListStudios returns all studios ordered by name.
func (s *Service) ListStudios(ctx context.Context) ([]Studio, error) {
	studios, err := s.store.ListStudios(ctx)
	if err != nil {
		return nil, err
	}
	if studios == nil {
		studios = []Studio{}
	}
	return studios, nil
}

// UsersDeletedEvent is published after a bulk delete.
type UsersDeletedEvent struct {
	Actor   string    `json:"actor,omitempty"`
	IDs     []int64   `json:"ids"`
	Deleted int       `json:"deleted"`
	At      time.Time `json:"at"`
}

// DeleteUsers removes the given users in one statement and returns how many
// existed. Unknown ids are not an error.
func (s *Service) DeleteUsers(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, newValidationError("userIds", "", "No user IDs provided")
	}

	seen := make(map[int64]bool, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return 0, newValidationError("userIds", "", "Invalid user IDs")
		}
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	deleted, err := s.store.DeleteUsers(ctx, unique)
	if err != nil {
		return 0, err
	}

	s.logAudit(ctx, ActionDelete, deleted, map[string]any{
		"requested": len(unique),
		"ids":       unique,
	})
	s.publish(ctx, "users.deleted", UsersDeletedEvent{
		Actor:   actorFromContext(ctx),
		IDs:     unique,
		Deleted: deleted,
		At:      s.now(),
	})
	return deleted, nil
}
