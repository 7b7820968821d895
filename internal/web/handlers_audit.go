package web

import (
	"net/http"

	"github.com/JonMunkholm/StudioUsers/internal/web/templates"
)

const auditPageSize = 50

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListAuditLog(r.Context(),
		parseIntParam(r, "page", 1),
		parseIntParam(r, "pageSize", auditPageSize),
	)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleAuditLogPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListAuditLog(r.Context(), parseIntParam(r, "page", 1), auditPageSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, templates.AuditLogPage(adminName(r), page))
}
