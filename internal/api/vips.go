package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/biofusionhq/biofusion-core/internal/infrastructure/mqtt"
	"github.com/biofusionhq/biofusion-core/internal/threatsim"
	"github.com/biofusionhq/biofusion-core/internal/vip"
)

// createVIPRequest is the request body for POST /vips.
type createVIPRequest struct {
	FullName        string   `json:"full_name"`
	DisplayName     string   `json:"display_name,omitempty"`
	ProfileImageURL string   `json:"profile_image_url,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// createThreatRequest is the request body for POST /threats.
type createThreatRequest struct {
	VIPID           string  `json:"vip_id"`
	Platform        string  `json:"platform"`
	ThreatType      string  `json:"threat_type"`
	ContentURL      string  `json:"content_url,omitempty"`
	ContentText     string  `json:"content_text,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// updateThreatRequest is the request body for PATCH /threats/{id}.
type updateThreatRequest struct {
	Status string `json:"status"`
}

// createCampaignRequest is the request body for POST /campaigns.
type createCampaignRequest struct {
	VIPID             string  `json:"vip_id,omitempty"`
	NetworkName       string  `json:"network_name"`
	NodeCount         int     `json:"node_count"`
	CoordinationScore float64 `json:"coordination_score"`
}

// handleListVIPs returns the account's monitored targets.
func (s *Server) handleListVIPs(w http.ResponseWriter, r *http.Request) {
	vips, err := s.vipRepo.ListVIPs(r.Context(), subjectFromContext(r.Context()))
	if err != nil {
		s.logger.Error("list vips failed", "error", err)
		writeInternalError(w, "failed to list VIPs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"vips":  vips,
		"count": len(vips),
	})
}

// handleCreateVIP adds a monitored target for the account.
func (s *Server) handleCreateVIP(w http.ResponseWriter, r *http.Request) {
	var req createVIPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	v := &vip.VIP{
		AccountID:       subjectFromContext(r.Context()),
		FullName:        req.FullName,
		DisplayName:     req.DisplayName,
		ProfileImageURL: req.ProfileImageURL,
		Keywords:        req.Keywords,
	}

	if err := s.vipRepo.CreateVIP(r.Context(), v); err != nil {
		if errors.Is(err, vip.ErrValidation) {
			writeValidationError(w, err.Error())
			return
		}
		s.logger.Error("create vip failed", "error", err)
		writeInternalError(w, "failed to create VIP")
		return
	}

	s.logger.Info("vip created", "vip_id", v.ID, "full_name", v.FullName)
	writeJSON(w, http.StatusCreated, v)
}

// handleGetVIP returns one monitored target.
func (s *Server) handleGetVIP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := s.vipRepo.GetVIP(r.Context(), subjectFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, vip.ErrNotFound) {
			writeNotFound(w, "VIP not found")
			return
		}
		s.logger.Error("get vip failed", "vip_id", id, "error", err)
		writeInternalError(w, "failed to get VIP")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// handleDeleteVIP removes a monitored target and its threat detections.
func (s *Server) handleDeleteVIP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.vipRepo.DeleteVIP(r.Context(), subjectFromContext(r.Context()), id); err != nil {
		if errors.Is(err, vip.ErrNotFound) {
			writeNotFound(w, "VIP not found")
			return
		}
		s.logger.Error("delete vip failed", "vip_id", id, "error", err)
		writeInternalError(w, "failed to delete VIP")
		return
	}

	s.logger.Info("vip deleted", "vip_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// handleVIPStats returns the aggregate monitoring counters.
func (s *Server) handleVIPStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.vipRepo.Stats(r.Context(), subjectFromContext(r.Context()))
	if err != nil {
		s.logger.Error("vip stats failed", "error", err)
		writeInternalError(w, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleListThreats returns threat detections with optional filters.
//
// Query parameters:
//   - vip_id: filter by monitored target
//   - status: filter by status (active, reviewed, dismissed)
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListThreats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := vip.ThreatFilter{
		VIPID:  q.Get("vip_id"),
		Status: q.Get("status"),
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v) //nolint:errcheck // zero falls back to the default limit
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v) //nolint:errcheck // zero offset on parse failure
	}

	threats, err := s.vipRepo.ListThreats(r.Context(), subjectFromContext(r.Context()), filter)
	if err != nil {
		s.logger.Error("list threats failed", "error", err)
		writeInternalError(w, "failed to list threats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"threats": threats,
		"count":   len(threats),
	})
}

// handleCreateThreat records a threat detection against one of the
// account's VIPs and pushes it to the live feeds.
func (s *Server) handleCreateThreat(w http.ResponseWriter, r *http.Request) {
	var req createThreatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	accountID := subjectFromContext(r.Context())
	t := &vip.ThreatDetection{
		VIPID:           req.VIPID,
		Platform:        req.Platform,
		ThreatType:      req.ThreatType,
		ContentURL:      req.ContentURL,
		ContentText:     req.ContentText,
		ConfidenceScore: req.ConfidenceScore,
	}

	if err := s.vipRepo.CreateThreat(r.Context(), accountID, t); err != nil {
		switch {
		case errors.Is(err, vip.ErrValidation):
			writeValidationError(w, err.Error())
		case errors.Is(err, vip.ErrNotFound):
			writeNotFound(w, "VIP not found")
		default:
			s.logger.Error("create threat failed", "error", err)
			writeInternalError(w, "failed to create threat")
		}
		return
	}

	s.logger.Info("threat recorded",
		"threat_id", t.ID,
		"vip_id", t.VIPID,
		"platform", t.Platform,
		"severity", t.Severity,
	)

	if s.hub != nil {
		s.hub.Broadcast(threatsim.ChannelThreatDetected, t)
	}
	if s.mqtt != nil && s.mqtt.IsConnected() {
		if payload, err := json.Marshal(t); err == nil {
			topic := mqtt.Topics{}.ThreatFeed(accountID)
			if err := s.mqtt.Publish(topic, payload, 0, false); err != nil {
				s.logger.Debug("threat feed publish failed", "topic", topic, "error", err)
			}
		}
	}
	if s.influx != nil {
		s.influx.WriteThreatMetric(t.Platform, t.ThreatType, t.ConfidenceScore)
	}

	writeJSON(w, http.StatusCreated, t)
}

// handleUpdateThreat changes a threat detection's review status.
func (s *Server) handleUpdateThreat(w http.ResponseWriter, r *http.Request) {
	var req updateThreatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	err := s.vipRepo.UpdateThreatStatus(r.Context(), subjectFromContext(r.Context()), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, vip.ErrValidation):
			writeValidationError(w, err.Error())
		case errors.Is(err, vip.ErrNotFound):
			writeNotFound(w, "threat not found")
		default:
			s.logger.Error("update threat failed", "threat_id", id, "error", err)
			writeInternalError(w, "failed to update threat")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

// handleListCampaigns returns the account's coordinated-network records.
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.vipRepo.ListCampaigns(r.Context(), subjectFromContext(r.Context()))
	if err != nil {
		s.logger.Error("list campaigns failed", "error", err)
		writeInternalError(w, "failed to list campaigns")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaigns": campaigns,
		"count":     len(campaigns),
	})
}

// handleCreateCampaign records a coordinated-network observation.
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	c := &vip.CampaignRecord{
		AccountID:         subjectFromContext(r.Context()),
		VIPID:             req.VIPID,
		NetworkName:       req.NetworkName,
		NodeCount:         req.NodeCount,
		CoordinationScore: req.CoordinationScore,
	}

	if err := s.vipRepo.CreateCampaign(r.Context(), c); err != nil {
		if errors.Is(err, vip.ErrValidation) {
			writeValidationError(w, err.Error())
			return
		}
		s.logger.Error("create campaign failed", "error", err)
		writeInternalError(w, "failed to create campaign")
		return
	}

	s.logger.Info("campaign recorded", "campaign_id", c.ID, "network", c.NetworkName)
	writeJSON(w, http.StatusCreated, c)
}
