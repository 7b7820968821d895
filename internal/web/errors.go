package web

// errors.go turns errors into responses.
//
// Every error is logged with its technical detail and the request ID, then
// mapped through core.MapError to a user message with a support code. API
// routes get JSON; pages get an HTML error page.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/StudioUsers/internal/core"
	"github.com/JonMunkholm/StudioUsers/internal/logging"
	"github.com/JonMunkholm/StudioUsers/internal/web/templates"
)

var (
	errNoFile       = errors.New("no file provided")
	errFileTooLarge = errors.New("file too large")
	errBadBody      = core.ValidationError{Field: "body", Message: "Invalid request body"}
)

// ErrorResponse is the JSON body of an error. Error carries the message
// shown to the admin; Code is the support reference.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	switch {
	case core.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthenticated), errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrUploadNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrEmptyFile), errors.Is(err, errNoFile), errors.Is(err, errFileTooLarge):
		return http.StatusBadRequest
	}
	if strings.HasPrefix(core.MapError(err).Code, "FILE") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// userMessage maps err for display. Validation errors keep their own text.
func userMessage(err error) core.UserMessage {
	msg := core.MapError(err)
	if core.IsValidationError(err) {
		msg.Message = core.ValidationMessage(err)
	}
	return msg
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := userMessage(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	if wantsJSON(r) {
		writeErrorJSON(w, r, status, msg)
		return
	}
	s.render(w, r, status, templates.ErrorPage(adminName(r), msg.Message, msg.Action, msg.Code))
}

func writeErrorJSON(w http.ResponseWriter, r *http.Request, status int, msg core.UserMessage) {
	writeJSON(w, r, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// unauthorized answers API requests that carry no valid session.
func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request) {
	writeErrorJSON(w, r, http.StatusUnauthorized, core.MapError(core.ErrUnauthenticated))
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// wantsJSON reports whether the client expects a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
