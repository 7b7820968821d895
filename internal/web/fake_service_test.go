package web

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/StudioUsers/internal/core"
)

// fakeService is a Service with canned data and simple rules.
type fakeService struct {
	mu       sync.Mutex
	sessions map[string]core.Session
	uploads  map[string]*core.StagedUpload
	users    []core.User
	studios  []core.Studio
	commands []core.Command
	deleted  []int64
	failList error
}

func newFakeService() *fakeService {
	created := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	return &fakeService{
		sessions: make(map[string]core.Session),
		uploads:  make(map[string]*core.StagedUpload),
		users: []core.User{
			{ID: 2, FirstName: "Bo", LastName: "Ray", Email: "bo@example.com", Phone: "5550101", Studio: "South", CreatedAt: created},
			{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Phone: "+15550100", Studio: "North", CreatedAt: created},
		},
		studios: []core.Studio{{ID: 1, Name: "North"}, {ID: 2, Name: "South"}},
	}
}

// login opens a session directly.
func (f *fakeService) login(username string) core.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := core.Session{ID: uuid.New(), Username: username, ExpiresAt: time.Now().Add(time.Hour)}
	f.sessions[s.ID.String()] = s
	return s
}

func (f *fakeService) Login(_ context.Context, username, password string) (core.Session, error) {
	if username == "" || password == "" {
		return core.Session{}, core.ValidationError{Field: "credentials", Message: "Username and password are required"}
	}
	if username != "admin" || password != "s3cret" {
		return core.Session{}, core.ErrInvalidCredentials
	}
	return f.login(username), nil
}

func (f *fakeService) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeService) Authenticate(_ context.Context, token string) (core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return core.Session{}, core.ErrUnauthenticated
	}
	return s, nil
}

func (f *fakeService) Execute(ctx context.Context, cmd core.Command) (core.ActionResult, error) {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()

	if _, ok := core.SessionFromContext(ctx); !ok {
		return core.ActionResult{}, core.ErrUnauthenticated
	}
	switch c := cmd.(type) {
	case core.DeleteUsersCommand:
		n, err := f.DeleteUsers(ctx, c.IDs)
		if err != nil {
			return core.ActionResult{}, err
		}
		return core.ActionResult{Success: true, Message: core.DeletedMessage(n)}, nil
	case core.GetStudiosCommand:
		return core.ActionResult{Success: true, Studios: f.studios}, nil
	default:
		return core.ActionResult{Success: true, Users: f.users}, nil
	}
}

func (f *fakeService) lastCommand() core.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.commands) == 0 {
		return nil
	}
	return f.commands[len(f.commands)-1]
}

func (f *fakeService) ListUsersPage(_ context.Context, page, pageSize int, _ string) (core.UserPage, error) {
	if f.failList != nil {
		return core.UserPage{}, f.failList
	}
	return core.UserPage{
		Users:       f.users,
		TotalCount:  len(f.users),
		TotalPages:  core.TotalPages(len(f.users), pageSize),
		CurrentPage: page,
		PageSize:    pageSize,
	}, nil
}

func (f *fakeService) SearchUsers(_ context.Context, term string, t core.SearchType, _ string) ([]core.User, error) {
	if !t.Valid() {
		return nil, core.ValidationError{Field: "searchType", Message: "Invalid search type"}
	}
	var out []core.User
	for _, u := range f.users {
		if u.FirstName == term {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeService) ExportUsers(ctx context.Context, term string, t core.SearchType, studio string) ([]core.User, error) {
	if term != "" && t != "" {
		return f.SearchUsers(ctx, term, t, studio)
	}
	return f.users, nil
}

func (f *fakeService) ListStudios(context.Context) ([]core.Studio, error) {
	return f.studios, nil
}

func (f *fakeService) DeleteUsers(_ context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, core.ValidationError{Field: "userIds", Message: "No user IDs provided"}
	}
	for _, id := range ids {
		if id <= 0 {
			return 0, core.ValidationError{Field: "userIds", Message: "Invalid user IDs"}
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids...)
	return len(ids), nil
}

func (f *fakeService) StageUpload(_ context.Context, fileName string, r io.Reader) (*core.StagedUpload, error) {
	headers, rows, err := core.ReadCSV(r, 0)
	if err != nil {
		return nil, err
	}
	u := &core.StagedUpload{ID: uuid.NewString(), FileName: fileName, Headers: headers, Rows: rows}
	f.mu.Lock()
	f.uploads[u.ID] = u
	f.mu.Unlock()
	return u, nil
}

func (f *fakeService) upload(id string) (*core.StagedUpload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.uploads[id]
	return u, ok
}

func (f *fakeService) StagedUploadByID(id string) (*core.StagedUpload, error) {
	u, ok := f.upload(id)
	if !ok {
		return nil, core.ErrUploadNotFound
	}
	return u, nil
}

func (f *fakeService) PreviewUpload(_ context.Context, id string, mapping core.ColumnMapping) (core.Preview, error) {
	u, ok := f.upload(id)
	if !ok {
		return core.Preview{}, core.ErrUploadNotFound
	}
	suggested := core.SuggestMapping(u.Headers)
	if mapping == nil {
		mapping = suggested
	}
	p := core.Preview{
		UploadID:   u.ID,
		FileName:   u.FileName,
		Headers:    u.Headers,
		SampleRows: u.Rows,
		TotalRows:  len(u.Rows),
		Suggested:  suggested,
		Missing:    mapping.Missing(),
	}
	if mapping.Complete() {
		p.Forecast = &core.Forecast{Create: len(u.Rows)}
	}
	return p, nil
}

func (f *fakeService) ImportStaged(_ context.Context, id string, mapping core.ColumnMapping) (core.ImportResult, error) {
	u, ok := f.upload(id)
	if !ok {
		return core.ImportResult{}, core.ErrUploadNotFound
	}
	if !mapping.Complete() {
		return core.ImportResult{}, core.ValidationError{Field: "mapping", Message: "Please map all required fields"}
	}
	f.mu.Lock()
	delete(f.uploads, id)
	f.mu.Unlock()
	return core.ImportResult{Created: len(u.Rows)}, nil
}

func (f *fakeService) DiscardUpload(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.uploads[id]; !ok {
		return core.ErrUploadNotFound
	}
	delete(f.uploads, id)
	return nil
}

func (f *fakeService) ListAuditLog(_ context.Context, page, pageSize int) (core.AuditPage, error) {
	return core.AuditPage{
		Entries:    []core.AuditEntry{{ID: "1", Action: core.ActionImport, Severity: core.SeverityHigh, Actor: "admin"}},
		TotalCount: 1,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (f *fakeService) ImportLimiterStatus() core.ImportLimiterStatus {
	return core.ImportLimiterStatus{}
}
