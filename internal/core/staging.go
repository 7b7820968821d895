package core

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/StudioUsers/internal/logging"
)

// ErrUploadNotFound is returned for unknown or expired staged uploads.
var ErrUploadNotFound = errors.New("upload not found")

// DefaultStagingTTL is how long a parsed upload waits for its mapping.
const DefaultStagingTTL = 30 * time.Minute

// StagedUpload is a parsed CSV kept in memory between preview and import.
type StagedUpload struct {
	ID        string
	FileName  string
	Headers   []string
	Rows      [][]string
	CreatedAt time.Time
}

type stagedEntry struct {
	upload *StagedUpload
	timer  *time.Timer
}

// stagingArea holds staged uploads until they are imported, discarded, or
// expire.
type stagingArea struct {
	mu      sync.Mutex
	uploads map[string]*stagedEntry
	ttl     time.Duration
	now     func() time.Time
	closed  bool
}

func newStagingArea(ttl time.Duration) *stagingArea {
	if ttl <= 0 {
		ttl = DefaultStagingTTL
	}
	return &stagingArea{
		uploads: make(map[string]*stagedEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (a *stagingArea) put(fileName string, headers []string, rows [][]string) *StagedUpload {
	u := &StagedUpload{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Headers:   headers,
		Rows:      rows,
		CreatedAt: a.now(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return u
	}
	a.uploads[u.ID] = &stagedEntry{
		upload: u,
		timer:  time.AfterFunc(a.ttl, func() { a.remove(u.ID) }),
	}
	return u
}

func (a *stagingArea) get(id string) (*StagedUpload, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.uploads[id]
	if !ok {
		return nil, false
	}
	return e.upload, true
}

// take removes and returns an upload, so two concurrent imports of the
// same upload cannot both run.
func (a *stagingArea) take(id string) (*StagedUpload, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.uploads[id]
	if !ok {
		return nil, false
	}
	e.timer.Stop()
	delete(a.uploads, id)
	return e.upload, true
}

func (a *stagingArea) remove(id string) bool {
	_, ok := a.take(id)
	return ok
}

func (a *stagingArea) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.uploads)
}

func (a *stagingArea) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, e := range a.uploads {
		e.timer.Stop()
		delete(a.uploads, id)
	}
	a.closed = true
}

// StageUpload parses r and keeps the result until it is imported or expires.
func (s *Service) StageUpload(ctx context.Context, fileName string, r io.Reader) (*StagedUpload, error) {
	headers, rows, err := ReadCSV(r, s.maxRows)
	if err != nil {
		return nil, err
	}

	u := s.staging.put(fileName, headers, rows)
	logging.FromContext(ctx).Info("upload staged",
		"upload_id", u.ID,
		"file", fileName,
		"rows", len(rows),
	)
	return u, nil
}

// StagedUploadByID returns a staged upload without consuming it.
func (s *Service) StagedUploadByID(id string) (*StagedUpload, error) {
	u, ok := s.staging.get(id)
	if !ok {
		return nil, ErrUploadNotFound
	}
	return u, nil
}

// ImportStaged projects a staged upload through mapping and imports it.
// An incomplete mapping leaves the upload staged so the admin can retry.
func (s *Service) ImportStaged(ctx context.Context, uploadID string, mapping ColumnMapping) (ImportResult, error) {
	u, err := s.StagedUploadByID(uploadID)
	if err != nil {
		return ImportResult{}, err
	}
	rows, err := mapping.Project(u.Headers, u.Rows)
	if err != nil {
		return ImportResult{}, err
	}

	if _, ok := s.staging.take(uploadID); !ok {
		return ImportResult{}, ErrUploadNotFound
	}
	return s.ImportUsers(ctx, u.FileName, rows)
}

// DiscardUpload drops a staged upload.
func (s *Service) DiscardUpload(uploadID string) error {
	if !s.staging.remove(uploadID) {
		return ErrUploadNotFound
	}
	return nil
}
