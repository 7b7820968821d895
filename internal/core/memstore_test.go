package core

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store with the same semantics as PostgresStore.
type memStore struct {
	mu       sync.Mutex
	studios  map[string]Studio
	users    map[int64]User
	admins   map[string]Admin
	sessions map[uuid.UUID]Session
	audit    []AuditEntry

	nextID int64
	clock  time.Time

	// failUpsertFor makes UpsertUser fail for the given email.
	failUpsertFor string
	upserts       int
}

func newMemStore() *memStore {
	return &memStore{
		studios:  make(map[string]Studio),
		users:    make(map[int64]User),
		admins:   make(map[string]Admin),
		sessions: make(map[uuid.UUID]Session),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// tick advances the store clock so later inserts sort as newer.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) UpsertStudio(_ context.Context, name string) (Studio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.studios[name]; ok {
		return s, nil
	}
	s := Studio{ID: m.id(), Name: name}
	m.studios[name] = s
	return s, nil
}

func (m *memStore) ListStudios(context.Context) ([]Studio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Studio, 0, len(m.studios))
	for _, s := range m.studios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) studioName(id int64) string {
	for _, s := range m.studios {
		if s.ID == id {
			return s.Name
		}
	}
	return UnknownStudio
}

func (m *memStore) UpsertUser(_ context.Context, u NewUser) (RowAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.failUpsertFor != "" && u.Email == m.failUpsertFor {
		return "", errors.New("connection reset by peer")
	}

	for id, existing := range m.users {
		if existing.Email != u.Email {
			continue
		}
		if existing.Phone == "" && u.Phone != "" {
			existing.Phone = u.Phone
			existing.StudioID = u.StudioID
			existing.Studio = m.studioName(u.StudioID)
			existing.UpdatedAt = m.tick()
			m.users[id] = existing
			return RowUpdated, nil
		}
		return RowSkipped, nil
	}

	now := m.tick()
	id := m.id()
	m.users[id] = User{
		ID:        id,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		StudioID:  u.StudioID,
		Studio:    m.studioName(u.StudioID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return RowCreated, nil
}

func (m *memStore) UsersByEmail(_ context.Context, emails []string) (map[string]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(emails))
	for _, e := range emails {
		want[e] = true
	}
	out := make(map[string]User)
	for _, u := range m.users {
		if want[u.Email] {
			out[u.Email] = u
		}
	}
	return out, nil
}

// sorted returns users matching keep, newest first.
func (m *memStore) sorted(keep func(User) bool) []User {
	var out []User
	for _, u := range m.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memStore) ListUsers(_ context.Context, p ListParams) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(func(u User) bool { return p.Studio == "" || u.Studio == p.Studio })
	total := len(all)
	if p.Offset >= len(all) {
		return []User{}, total, nil
	}
	all = all[p.Offset:]
	if p.Limit > 0 && len(all) > p.Limit {
		all = all[:p.Limit]
	}
	return all, total, nil
}

func (m *memStore) SearchUsers(_ context.Context, p SearchParams) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	term := strings.ToLower(p.Term)
	has := func(s string) bool { return strings.Contains(strings.ToLower(s), term) }
	return m.sorted(func(u User) bool {
		if p.Studio != "" && u.Studio != p.Studio {
			return false
		}
		switch p.Type {
		case SearchEmail:
			return has(u.Email)
		case SearchPhone:
			return has(u.Phone)
		case SearchName:
			return has(u.FirstName) || has(u.LastName)
		}
		return false
	}), nil
}

func (m *memStore) DeleteUsers(_ context.Context, ids []int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.users[id]; ok {
			delete(m.users, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) AdminByUsername(_ context.Context, username string) (Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[username]
	if !ok {
		return Admin{}, ErrNotFound
	}
	return a, nil
}

func (m *memStore) CreateAdmin(_ context.Context, username, password string) (Admin, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[username]; ok {
		return Admin{}, false, nil
	}
	a := Admin{ID: m.id(), Username: username, Password: password}
	m.admins[username] = a
	return a, true, nil
}

func (m *memStore) CreateSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) SessionByID(_ context.Context, id uuid.UUID) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *memStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) InsertAudit(_ context.Context, e AuditEntry) (AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = m.tick()
	m.audit = append(m.audit, e)
	return e, nil
}

func (m *memStore) ListAudit(_ context.Context, limit, offset int) ([]AuditEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AuditEntry, 0, len(m.audit))
	for i := len(m.audit) - 1; i >= 0; i-- {
		out = append(out, m.audit[i])
	}
	total := len(out)
	if offset >= len(out) {
		return []AuditEntry{}, total, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memStore) auditActions() []AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AuditAction, len(m.audit))
	for i, e := range m.audit {
		out[i] = e.Action
	}
	return out
}

func (m *memStore) userByEmail(email string) (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}

func (m *memStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

var _ Store = (*memStore)(nil)

// testRecorder captures Recorder calls.
type testRecorder struct {
	mu     sync.Mutex
	rows   map[string]int
	logins []string
	timed  int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{rows: make(map[string]int)}
}

func (r *testRecorder) RecordImportRows(action string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[action] += n
}

func (r *testRecorder) RecordImportDuration(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timed++
}

func (r *testRecorder) RecordLogin(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, result)
}

// testPublisher captures published events.
type testPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *testPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

// newTestService returns a Service over a fresh memStore.
func newTestService(opts ...Option) (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store, nil, opts...)
	return svc, store
}

// adminContext returns a context carrying an admin session.
func adminContext() context.Context {
	return ContextWithSession(context.Background(), Session{
		ID:       uuid.New(),
		AdminID:  1,
		Username: "admin",
	})
}
