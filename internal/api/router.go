package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// System metrics (no auth required for basic monitoring)
		r.Get("/metrics", s.handleMetrics)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)

			// WS ticket requires authentication - user must be logged in to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Capture flow
			r.Get("/flow", s.handleFlowPosition)
			r.Post("/flow/{step}", s.handleCaptureStep)
			r.Get("/capture/capabilities", s.handleCapabilities)

			// Profile
			r.Get("/profile", s.handleGetProfile)

			// VIP monitoring
			r.Route("/vips", func(r chi.Router) {
				r.Get("/", s.handleListVIPs)
				r.Post("/", s.handleCreateVIP)
				r.Get("/stats", s.handleVIPStats)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetVIP)
					r.Delete("/", s.handleDeleteVIP)
				})
			})

			// Threat detections
			r.Route("/threats", func(r chi.Router) {
				r.Get("/", s.handleListThreats)
				r.Post("/", s.handleCreateThreat)
				r.Patch("/{id}", s.handleUpdateThreat)
			})

			// Campaign network records
			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", s.handleListCampaigns)
				r.Post("/", s.handleCreateCampaign)
			})

			// Quantum dashboard
			r.Route("/quantum", func(r chi.Router) {
				r.Get("/", s.handleQuantumDashboard)
				r.Post("/scans", s.handleStartScan)
				r.Get("/scans/{id}", s.handleGetScan)
			})

			// Verification audit log
			r.Get("/audit/verifications", s.handleListVerifications)

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
