package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/storyimport/internal/core"
	"github.com/JonMunkholm/storyimport/internal/logging"
	"github.com/JonMunkholm/storyimport/internal/web/views"
)

// maxMediaBody bounds the media request body.
const maxMediaBody = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// handleImport runs a full import of the configured CSV and returns the
// summary. The import is detached from the request: a client that hangs up
// does not stop it half-way.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(WithRequestMetadata(r.Context(), r))

	summary, err := s.service.RunImport(ctx)
	if err != nil {
		s.respondErrorWithSummary(w, r, err, summary)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleImportStatus reports whether an import is running.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": s.service.ImportStatus()}
	if last, ok := s.service.LastSummary(); ok {
		resp["last_import"] = map[string]any{
			"import_id":     last.ImportID,
			"started_at":    last.StartedAt,
			"created_count": last.CreatedCount,
			"skipped_count": last.SkippedCount,
			"failed_count":  last.FailedCount,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleImportReport renders the last import summary. The format query
// parameter selects html (default), json, xlsx, or csv (failed rows only).
func (s *Server) handleImportReport(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.service.LastSummary()
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "No import has run since the server started",
			Message: "No import has run since the server started",
			Action:  "Trigger POST /api/stories/import first",
			Code:    "RPT001",
		})
		return
	}

	log := logging.WithFields(r.Context(), "import_id", summary.ImportID)

	switch format := r.URL.Query().Get("format"); format {
	case "", "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := views.ImportReport(summary, s.service.Languages()).Render(r.Context(), w); err != nil {
			log.Error("render report", "error", err)
		}

	case "json":
		writeJSON(w, http.StatusOK, summary)

	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="story_import_%s.xlsx"`, summary.ImportID))
		if err := writeReportXLSX(w, summary); err != nil {
			log.Error("write xlsx report", "error", err)
		}

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="failed_rows_%s.csv"`, summary.ImportID))
		if err := writeFailedRowsCSV(w, summary.Failed); err != nil {
			log.Error("write failed rows", "error", err)
		}

	default:
		writeBadRequest(w, fmt.Sprintf("unknown report format %q", format))
	}
}

// mediaRequest is the body of POST /api/stories/media.
type mediaRequest struct {
	StoryName string `json:"story_name" validate:"required"`
	Audio     string `json:"audio" validate:"omitempty,max=2048"`
	Thumbnail string `json:"thumbnail" validate:"omitempty,max=2048"`
}

func (m *mediaRequest) normalize() {
	m.StoryName = strings.TrimSpace(m.StoryName)
	m.Audio = strings.TrimSpace(m.Audio)
	m.Thumbnail = strings.TrimSpace(m.Thumbnail)
}

// decodeMediaRequest accepts a JSON body or form values.
func decodeMediaRequest(r *http.Request) (mediaRequest, error) {
	var req mediaRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("invalid form body: %w", err)
		}
		req.StoryName = r.Form.Get("story_name")
		req.Audio = r.Form.Get("audio")
		req.Thumbnail = r.Form.Get("thumbnail")
	}

	req.normalize()
	return req, nil
}

// handleAttachMedia sets the audio and thumbnail of a story. Fields that
// already hold a value keep it.
func (s *Server) handleAttachMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMediaBody)

	req, err := decodeMediaRequest(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "StoryName" {
					s.respondError(w, r, core.ErrStoryNameRequired)
					return
				}
			}
			writeBadRequest(w, fmt.Sprintf("%s is too long", strings.ToLower(verrs[0].Field())))
			return
		}
		writeBadRequest(w, err.Error())
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	name, err := s.service.AttachMedia(ctx, req.StoryName, req.Audio, req.Thumbnail)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "story": name})
}
