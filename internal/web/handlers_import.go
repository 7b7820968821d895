package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/StudioUsers/internal/core"
	"github.com/JonMunkholm/StudioUsers/internal/web/templates"
)

type mappingRequest struct {
	Mapping map[string]string `json:"mapping"`
}

type importResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Updated  int               `json:"updated"`
	Skipped  int               `json:"skipped"`
	Outcomes []core.RowOutcome `json:"outcomes"`
	Message  string            `json:"message"`
}

// stageFromRequest parses a multipart upload and stages its "file" part.
func (s *Server) stageFromRequest(w http.ResponseWriter, r *http.Request) (*core.StagedUpload, error) {
	if err := parseForm(w, r, s.cfg.Import.MaxFileSize); err != nil {
		return nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	return s.service.StageUpload(r.Context(), header.Filename, file)
}

// mappingFromForm reads one select per canonical field.
func mappingFromForm(form url.Values) (core.ColumnMapping, error) {
	raw := make(map[string]string)
	for _, f := range core.CanonicalFields {
		if v := form.Get(string(f)); v != "" {
			raw[string(f)] = v
		}
	}
	return core.ParseColumnMapping(raw)
}

// handlePreviewUpload stages a file and previews it. An optional "mapping"
// form value (a JSON object of field to header) adds a forecast.
func (s *Server) handlePreviewUpload(w http.ResponseWriter, r *http.Request) {
	u, err := s.stageFromRequest(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var mapping core.ColumnMapping
	if raw := r.FormValue("mapping"); raw != "" {
		var fields map[string]string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			s.respondError(w, r, core.ValidationError{Field: "mapping", Message: "Invalid mapping format"})
			return
		}
		if mapping, err = core.ParseColumnMapping(fields); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	p, err := s.service.PreviewUpload(r.Context(), u.ID, mapping)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) readMapping(w http.ResponseWriter, r *http.Request) (core.ColumnMapping, error) {
	var req mappingRequest
	if err := decodeJSON(w, r, 64<<10, &req); err != nil {
		return nil, err
	}
	if len(req.Mapping) == 0 {
		return nil, nil
	}
	return core.ParseColumnMapping(req.Mapping)
}

func (s *Server) handlePreviewStaged(w http.ResponseWriter, r *http.Request) {
	mapping, err := s.readMapping(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.service.PreviewUpload(r.Context(), chi.URLParam(r, "uploadID"), mapping)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleImportStaged(w http.ResponseWriter, r *http.Request) {
	mapping, err := s.readMapping(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	res, err := s.service.ImportStaged(r.Context(), chi.URLParam(r, "uploadID"), mapping)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, importResponse{
		Success:  true,
		Count:    res.Created,
		Updated:  res.Updated,
		Skipped:  res.Skipped,
		Outcomes: res.Outcomes,
		Message:  res.Message(),
	})
}

func (s *Server) handleDiscardUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DiscardUpload(chi.URLParam(r, "uploadID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, templates.ImportPage(adminName(r), ""))
}

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	u, err := s.stageFromRequest(w, r)
	if err != nil {
		if status := statusFor(err); status < http.StatusInternalServerError {
			s.render(w, r, status, templates.ImportPage(adminName(r), userMessage(err).Message))
			return
		}
		s.respondError(w, r, err)
		return
	}

	p, err := s.service.PreviewUpload(r.Context(), u.ID, nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, templates.MappingPage(adminName(r), p, p.Suggested, ""))
}

// handleMappingPage shows the mapping page again for an upload that is
// still staged, with the suggested mapping selected.
func (s *Server) handleMappingPage(w http.ResponseWriter, r *http.Request) {
	u, err := s.service.StagedUploadByID(chi.URLParam(r, "uploadID"))
	if errors.Is(err, core.ErrUploadNotFound) {
		s.render(w, r, http.StatusNotFound, templates.ImportPage(adminName(r), userMessage(err).Message))
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	p, err := s.service.PreviewUpload(r.Context(), u.ID, nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, templates.MappingPage(adminName(r), p, p.Suggested, ""))
}

// handleMappingForm previews or imports a staged upload with the mapping
// chosen on the mapping page.
func (s *Server) handleMappingForm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, 64<<10); err != nil {
		s.respondError(w, r, err)
		return
	}
	uploadID := chi.URLParam(r, "uploadID")
	mapping, err := mappingFromForm(r.PostForm)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if r.PostForm.Get("step") == "import" {
		res, err := s.service.ImportStaged(r.Context(), uploadID, mapping)
		if err == nil {
			s.render(w, r, http.StatusOK, templates.ImportResultPage(adminName(r), r.PostForm.Get("fileName"), res))
			return
		}
		if !core.IsValidationError(err) {
			s.respondError(w, r, err)
			return
		}
		s.renderMapping(w, r, uploadID, mapping, core.ValidationMessage(err))
		return
	}

	s.renderMapping(w, r, uploadID, mapping, "")
}

func (s *Server) renderMapping(w http.ResponseWriter, r *http.Request, uploadID string, mapping core.ColumnMapping, errMsg string) {
	p, err := s.service.PreviewUpload(r.Context(), uploadID, mapping)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	status := http.StatusOK
	if errMsg == "" && len(p.Missing) > 0 {
		errMsg = "Please map all required fields"
	}
	if errMsg != "" {
		status = http.StatusBadRequest
	}
	s.render(w, r, status, templates.MappingPage(adminName(r), p, mapping, errMsg))
}

func (s *Server) handleDiscardForm(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DiscardUpload(chi.URLParam(r, "uploadID")); err != nil && !errors.Is(err, core.ErrUploadNotFound) {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
