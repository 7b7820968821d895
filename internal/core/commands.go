package core

// commands.go turns the form-encoded action surface into typed commands.
//
// Every request carries an "intent" naming the command. ParseCommand does
// all request validation up front, so Execute only ever sees well-formed
// commands.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Intents accepted by ParseCommand.
const (
	IntentImportUsers = "import-users"
	IntentSearchUsers = "search-users"
	IntentGetUsers    = "get-users"
	IntentGetStudios  = "get-studios"
	IntentDeleteUsers = "delete-users"
	IntentExportCSV   = "export-csv"
)

// Command is one admin action. The set of implementations is closed.
type Command interface {
	Intent() string
	command()
}

// ImportUsersCommand imports already-mapped rows.
type ImportUsersCommand struct {
	Rows []MappedRow
}

// SearchUsersCommand searches users.
type SearchUsersCommand struct {
	Term   string
	Type   SearchType
	Studio string
}

// GetUsersCommand lists one page of users.
type GetUsersCommand struct {
	Page     int
	PageSize int
	Studio   string
}

// GetStudiosCommand lists studios.
type GetStudiosCommand struct{}

// DeleteUsersCommand deletes users by id.
type DeleteUsersCommand struct {
	IDs []int64
}

// ExportCSVCommand gathers users for export.
type ExportCSVCommand struct {
	Term   string
	Type   SearchType
	Studio string
}

func (ImportUsersCommand) Intent() string { return IntentImportUsers }
func (SearchUsersCommand) Intent() string { return IntentSearchUsers }
func (GetUsersCommand) Intent() string    { return IntentGetUsers }
func (GetStudiosCommand) Intent() string  { return IntentGetStudios }
func (DeleteUsersCommand) Intent() string { return IntentDeleteUsers }
func (ExportCSVCommand) Intent() string   { return IntentExportCSV }

func (ImportUsersCommand) command() {}
func (SearchUsersCommand) command() {}
func (GetUsersCommand) command()    {}
func (GetStudiosCommand) command()  {}
func (DeleteUsersCommand) command() {}
func (ExportCSVCommand) command()   {}

// ParseCommand builds a Command from form values.
func ParseCommand(form url.Values) (Command, error) {
	switch intent := form.Get("intent"); intent {
	case IntentImportUsers:
		raw := form.Get("users")
		if raw == "" {
			return nil, newValidationError("users", "", "No user data provided")
		}
		var rows []MappedRow
		if err := json.Unmarshal([]byte(raw), &rows); err != nil {
			return nil, newValidationError("users", "", "Invalid user data")
		}
		if len(rows) == 0 {
			return nil, newValidationError("users", "", "No user data provided")
		}
		return ImportUsersCommand{Rows: rows}, nil

	case IntentSearchUsers:
		term := strings.TrimSpace(form.Get("searchTerm"))
		if term == "" {
			return nil, newValidationError("searchTerm", "", "Search term is required")
		}
		st := SearchType(form.Get("searchType"))
		if !st.Valid() {
			return nil, newValidationError("searchType", string(st), "Invalid search type")
		}
		return SearchUsersCommand{Term: term, Type: st, Studio: form.Get("studioFilter")}, nil

	case IntentGetUsers:
		return GetUsersCommand{
			Page:     atoiDefault(form.Get("page"), 1),
			PageSize: atoiDefault(form.Get("pageSize"), DefaultPageSize),
			Studio:   form.Get("studioFilter"),
		}, nil

	case IntentGetStudios:
		return GetStudiosCommand{}, nil

	case IntentDeleteUsers:
		raw := form.Get("userIds")
		if raw == "" {
			return nil, newValidationError("userIds", "", "No user IDs provided")
		}
		ids, err := parseUserIDs(raw)
		if err != nil || len(ids) == 0 {
			return nil, newValidationError("userIds", raw, "Invalid user IDs")
		}
		return DeleteUsersCommand{IDs: ids}, nil

	case IntentExportCSV:
		return ExportCSVCommand{
			Term:   strings.TrimSpace(form.Get("searchTerm")),
			Type:   SearchType(form.Get("searchType")),
			Studio: form.Get("studioFilter"),
		}, nil

	default:
		return nil, newValidationError("intent", intent, "Invalid intent")
	}
}

// atoiDefault parses s, returning def for anything that is not a positive
// integer.
func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// parseUserIDs accepts a JSON array of positive ids.
func parseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("invalid user id %d", id)
		}
	}
	return ids, nil
}

// ActionResult is the JSON body of a successful action. Fields a command
// does not produce are left out.
type ActionResult struct {
	Success      bool         `json:"success"`
	Intent       string       `json:"intent,omitempty"`
	Users        []User       `json:"users,omitzero"`
	Studios      []Studio     `json:"studios,omitzero"`
	Count        *int         `json:"count,omitempty"`
	Updated      *int         `json:"updated,omitempty"`
	Skipped      *int         `json:"skipped,omitempty"`
	Outcomes     []RowOutcome `json:"outcomes,omitzero"`
	TotalCount   *int         `json:"totalCount,omitempty"`
	TotalPages   *int         `json:"totalPages,omitempty"`
	CurrentPage  *int         `json:"currentPage,omitempty"`
	PageSize     *int         `json:"pageSize,omitempty"`
	DeletedCount *int         `json:"deletedCount,omitempty"`
	Message      string       `json:"message,omitempty"`
}

func intPtr(n int) *int { return &n }

// DeletedMessage is the confirmation shown after a bulk delete.
func DeletedMessage(n int) string {
	if n == 1 {
		return "Successfully deleted 1 user"
	}
	return fmt.Sprintf("Successfully deleted %d users", n)
}

// Execute runs cmd on behalf of the session in ctx.
func (s *Service) Execute(ctx context.Context, cmd Command) (ActionResult, error) {
	if _, ok := SessionFromContext(ctx); !ok {
		return ActionResult{}, ErrUnauthenticated
	}

	switch c := cmd.(type) {
	case ImportUsersCommand:
		res, err := s.ImportUsers(ctx, "", c.Rows)
		if err != nil {
			return ActionResult{}, err
		}
		return ActionResult{
			Success:  true,
			Count:    intPtr(res.Created),
			Updated:  intPtr(res.Updated),
			Skipped:  intPtr(res.Skipped),
			Outcomes: res.Outcomes,
			Message:  res.Message(),
		}, nil

	case SearchUsersCommand:
		users, err := s.SearchUsers(ctx, c.Term, c.Type, c.Studio)
		if err != nil {
			return ActionResult{}, err
		}
		return ActionResult{Success: true, Users: users, Count: intPtr(len(users))}, nil

	case GetUsersCommand:
		page, err := s.ListUsersPage(ctx, c.Page, c.PageSize, c.Studio)
		if err != nil {
			return ActionResult{}, err
		}
		return ActionResult{
			Success:     true,
			Users:       page.Users,
			TotalCount:  intPtr(page.TotalCount),
			TotalPages:  intPtr(page.TotalPages),
			CurrentPage: intPtr(page.CurrentPage),
			PageSize:    intPtr(page.PageSize),
		}, nil

	case GetStudiosCommand:
		studios, err := s.ListStudios(ctx)
		if err != nil {
			return ActionResult{}, err
		}
		return ActionResult{Success: true, Studios: studios}, nil

	case DeleteUsersCommand:
		n, err := s.DeleteUsers(ctx, c.IDs)
		if err != nil {
			return ActionResult{}, err
		}
		return ActionResult{Success: true, DeletedCount: intPtr(n), Message: DeletedMessage(n)}, nil

	case ExportCSVCommand:
		users, err := s.ExportUsers(ctx, c.Term, c.Type, c.Studio)
		if err != nil {
			return ActionResult{}, err
		}
		return ActionResult{
			Success: true,
			Intent:  IntentExportCSV,
			Users:   users,
			Count:   intPtr(len(users)),
		}, nil

	default:
		panic(fmt.Sprintf("core: unhandled command %T", cmd))
	}
}
