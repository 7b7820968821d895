package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/StudioUsers/internal/core"
	"github.com/JonMunkholm/StudioUsers/internal/logging"
	"github.com/JonMunkholm/StudioUsers/internal/web/templates"
)

// handleAction runs one intent from a form-encoded or multipart body.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, s.cfg.Import.MaxFileSize); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.runCommand(w, r, r.PostForm)
}

// handleIntentQuery serves a read-only intent from query parameters.
func (s *Server) handleIntentQuery(intent string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := r.URL.Query()
		form.Set("intent", intent)
		s.runCommand(w, r, form)
	}
}

func (s *Server) runCommand(w http.ResponseWriter, r *http.Request, form url.Values) {
	cmd, err := core.ParseCommand(form)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("executing action", "intent", cmd.Intent())
	result, err := s.service.Execute(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

type deleteUsersRequest struct {
	UserIDs []int64 `json:"userIds"`
}

func (s *Server) handleDeleteUsers(w http.ResponseWriter, r *http.Request) {
	var req deleteUsersRequest
	if err := decodeJSON(w, r, 1<<20, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	result, err := s.service.Execute(r.Context(), core.DeleteUsersCommand{IDs: req.UserIDs})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleExport streams the filtered or searched users as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := s.service.ExportUsers(r.Context(),
		strings.TrimSpace(q.Get("searchTerm")),
		core.SearchType(q.Get("searchType")),
		q.Get("studioFilter"),
	)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.ExportFilename(s.now())))
	if err := core.WriteUsersCSV(w, users); err != nil {
		logging.FromContext(r.Context()).Error("export write failed", "users", len(users), "error", err)
	}
}

func (s *Server) handleUsersPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := templates.UsersView{
		Studio:     q.Get("studioFilter"),
		SearchTerm: strings.TrimSpace(q.Get("searchTerm")),
		SearchType: core.SearchType(q.Get("searchType")),
	}
	if n, err := strconv.Atoi(q.Get("deleted")); err == nil {
		v.Message = core.DeletedMessage(n)
	}
	s.renderUsers(w, r, v, parseIntParam(r, "page", 1))
}

func (s *Server) renderUsers(w http.ResponseWriter, r *http.Request, v templates.UsersView, page int) {
	ctx := r.Context()

	studios, err := s.service.ListStudios(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	v.Studios = studios

	if v.SearchTerm != "" {
		users, err := s.service.SearchUsers(ctx, v.SearchTerm, v.SearchType, v.Studio)
		switch {
		case core.IsValidationError(err):
			v.Error = core.ValidationMessage(err)
		case err != nil:
			s.respondError(w, r, err)
			return
		}
		v.Users = users
	} else {
		p, err := s.service.ListUsersPage(ctx, page, core.DefaultPageSize, v.Studio)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		v.Users, v.Page, v.TotalPages, v.TotalCount = p.Users, p.CurrentPage, p.TotalPages, p.TotalCount
	}

	status := http.StatusOK
	if v.Error != "" {
		status = http.StatusBadRequest
	}
	s.render(w, r, status, templates.UsersPage(adminName(r), v))
}

func (s *Server) handleDeleteUsersForm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, 1<<20); err != nil {
		s.respondError(w, r, err)
		return
	}

	ids := make([]int64, 0, len(r.PostForm["userId"]))
	for _, raw := range r.PostForm["userId"] {
		// Unparseable values become 0 and are rejected as invalid ids.
		id, _ := strconv.ParseInt(raw, 10, 64)
		ids = append(ids, id)
	}

	n, err := s.service.DeleteUsers(r.Context(), ids)
	if core.IsValidationError(err) {
		s.renderUsers(w, r, templates.UsersView{Error: core.ValidationMessage(err)}, 1)
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/users?deleted="+strconv.Itoa(n), http.StatusSeeOther)
}
