package web

// errors.go turns service errors into HTTP responses.
//
// The technical error is logged with the request ID. The client gets the
// coded message from core.MapError, as JSON for API callers or as an HTML
// alert for browsers. The status code follows core.ErrorKind.

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/storyimport/internal/core"
	"github.com/JonMunkholm/storyimport/internal/logging"
	"github.com/JonMunkholm/storyimport/internal/web/views"
)

// ErrorResponse is the JSON body of API errors.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Action  string        `json:"action,omitempty"`
	Code    string        `json:"code"`
	Summary *core.Summary `json:"summary,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch core.ErrorKind(err) {
	case core.KindBatchFatal, core.KindNotFound:
		return http.StatusNotFound
	case core.KindRowValidation:
		return http.StatusBadRequest
	case core.KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorWithSummary(w, r, err, nil)
}

// respondErrorWithSummary is respondError for an import that created
// stories before failing; the summary is included in JSON responses.
func (s *Server) respondErrorWithSummary(w http.ResponseWriter, r *http.Request, err error, summary *core.Summary) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		views.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
		return
	}

	writeJSON(w, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
		Summary: summary,
	})
}

// writeBadRequest reports a malformed request that never reached the service.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   message,
		Message: message,
		Code:    "REQ001",
	})
}

// wantsHTML reports whether the client asked for HTML rather than JSON.
// API routes answer JSON unless text/html is explicitly accepted.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
