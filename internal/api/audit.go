package api

import (
	"net/http"
	"strconv"

	"github.com/biofusionhq/biofusion-core/internal/audit"
	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// handleListVerifications returns paginated verification log entries.
//
// Query parameters:
//   - modality: filter by modality (face, voice, gesture, body)
//   - path: filter by path (enrollment, verification)
//   - accepted: filter by outcome (true, false)
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListVerifications(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeNotFound(w, "verification log not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Modality: biometric.Modality(q.Get("modality")),
		Path:     audit.Path(q.Get("path")),
	}
	if v := q.Get("accepted"); v != "" {
		accepted, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "accepted must be true or false")
			return
		}
		filter.Accepted = &accepted
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v) //nolint:errcheck // zero falls back to the default limit
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v) //nolint:errcheck // zero offset on parse failure
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list verification logs failed", "error", err)
		writeInternalError(w, "failed to list verification logs")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
