package core

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/JonMunkholm/StudioUsers/internal/logging"
)

var (
	// ErrUnauthenticated is returned when a request has no valid session.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredentials is returned by Login for an unknown username or
	// a wrong password; callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Login outcomes reported to the Recorder.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginError   = "error"
)

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// checkPassword compares a stored password with a candidate. Stored values
// that are not bcrypt hashes are compared verbatim.
func checkPassword(stored, candidate string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, newValidationError("credentials", "", "Username and password are required")
	}
	logger := logging.WithFields(ctx, "username", username)

	admin, err := s.store.AdminByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		s.loginFailed(ctx, username, "unknown username")
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		s.recorder.RecordLogin(LoginError)
		return Session{}, fmt.Errorf("lookup admin: %w", err)
	}
	if !checkPassword(admin.Password, password) {
		s.loginFailed(ctx, username, "wrong password")
		return Session{}, ErrInvalidCredentials
	}

	now := s.now()
	if n, err := s.store.DeleteExpiredSessions(ctx, now); err != nil {
		logger.Warn("expired session cleanup failed", "error", err)
	} else if n > 0 {
		logger.Debug("expired sessions removed", "count", n)
	}

	sess := Session{
		ID:        uuid.New(),
		AdminID:   admin.ID,
		Username:  admin.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		s.recorder.RecordLogin(LoginError)
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	s.recorder.RecordLogin(LoginSuccess)
	s.logAudit(ContextWithSession(ctx, sess), ActionLogin, 0, nil)
	logger.Info("admin logged in")
	return sess, nil
}

func (s *Service) loginFailed(ctx context.Context, username, reason string) {
	s.recorder.RecordLogin(LoginFailure)
	s.logAudit(ctx, ActionLoginFailed, 0, map[string]any{"username": username})
	logging.FromContext(ctx).Warn("login failed", "username", username, "reason", reason)
}

// Authenticate returns the live session identified by token.
// Expired sessions are removed.
func (s *Service) Authenticate(ctx context.Context, token string) (Session, error) {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return Session{}, ErrUnauthenticated
	}

	sess, err := s.store.SessionByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Session{}, ErrUnauthenticated
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup session: %w", err)
	}

	if sess.Expired(s.now()) {
		if err := s.store.DeleteSession(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("expired session delete failed", "error", err)
		}
		return Session{}, ErrUnauthenticated
	}
	return sess, nil
}

// Logout ends the session identified by token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil
	}
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logAudit(ctx, ActionLogout, 0, nil)
	return nil
}

// EnsureAdmin creates the admin account if the username is free. It reports
// whether an account was created; an existing account is left unchanged.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, newValidationError("credentials", "", "Username and password are required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	_, created, err := s.store.CreateAdmin(ctx, username, hash)
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	if created {
		logging.FromContext(ctx).Info("admin account created", "username", username)
	}
	return created, nil
}
