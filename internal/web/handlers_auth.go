package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/StudioUsers/internal/core"
	"github.com/JonMunkholm/StudioUsers/internal/web/middleware"
	"github.com/JonMunkholm/StudioUsers/internal/web/templates"
)

const maxLoginBody = 4 << 10

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess core.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.ID.String(),
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.Security.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Security.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleLogin is the JSON login: {username, password}.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, maxLoginBody, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, err := s.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.setSessionCookie(w, sess)
	writeJSON(w, r, http.StatusOK, loginResponse{
		Success:   true,
		Token:     sess.ID.String(),
		Username:  sess.Username,
		ExpiresAt: sess.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if adminName(r) != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, templates.LoginPage("", ""))
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, maxLoginBody); err != nil {
		s.respondError(w, r, err)
		return
	}
	username := r.PostForm.Get("username")

	sess, err := s.service.Login(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.respondError(w, r, err)
			return
		}
		s.render(w, r, status, templates.LoginPage(username, userMessage(err).Message))
		return
	}

	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogoutForm(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
