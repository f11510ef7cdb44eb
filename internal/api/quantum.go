package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biofusionhq/biofusion-core/internal/threatsim"
)

// startScanRequest is the request body for POST /quantum/scans.
type startScanRequest struct {
	Target string `json:"target"`
}

// handleQuantumDashboard returns the current simulated dashboard state.
func (s *Server) handleQuantumDashboard(w http.ResponseWriter, _ *http.Request) {
	if s.sim == nil {
		writeNotFound(w, "simulation engine not running")
		return
	}
	writeJSON(w, http.StatusOK, s.sim.Snapshot())
}

// handleStartScan launches a simulated vulnerability scan. The scan runs in
// the background for its fixed duration; poll GET /quantum/scans/{id} or
// subscribe to the scan_completed channel for the result.
func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	if s.sim == nil {
		writeNotFound(w, "simulation engine not running")
		return
	}

	var req startScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	scan, err := s.sim.StartScan(req.Target)
	if err != nil {
		if errors.Is(err, threatsim.ErrMissingTarget) {
			writeValidationError(w, "target is required")
			return
		}
		s.logger.Error("start scan failed", "error", err)
		writeInternalError(w, "failed to start scan")
		return
	}

	s.logger.Info("vulnerability scan started", "scan_id", scan.ID, "target", scan.Target)
	writeJSON(w, http.StatusAccepted, scan.View())
}

// handleGetScan returns a scan's current state and, once complete, its result.
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	if s.sim == nil {
		writeNotFound(w, "simulation engine not running")
		return
	}

	id := chi.URLParam(r, "id")
	scan, err := s.sim.GetScan(id)
	if err != nil {
		if errors.Is(err, threatsim.ErrScanNotFound) {
			writeNotFound(w, "scan not found")
			return
		}
		s.logger.Error("get scan failed", "scan_id", id, "error", err)
		writeInternalError(w, "failed to get scan")
		return
	}

	writeJSON(w, http.StatusOK, scan.View())
}
