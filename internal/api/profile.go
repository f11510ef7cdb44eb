package api

import (
	"net/http"
)

// profileResponse wraps the stored profile with its derived session view.
type profileResponse struct {
	Profile    any      `json:"profile"`
	Mode       string   `json:"mode"`
	Registered []string `json:"registered_modalities"`
}

// handleGetProfile returns the station's current profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, _ *http.Request) {
	p := s.store.Current()
	if p == nil {
		writeNotFound(w, "no profile registered on this station")
		return
	}

	registered := make([]string, 0, len(p.Samples))
	for _, m := range s.store.RegisteredModalities() {
		registered = append(registered, string(m))
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Profile:    p,
		Mode:       string(s.store.Mode()),
		Registered: registered,
	})
}
