// Package api implements the HTTP REST API and WebSocket server for
// BioFusion Core.
//
// This package provides:
//   - REST endpoints for registration, login, and the stepped capture flow
//   - VIP monitoring endpoints (targets, threat detections, campaigns)
//   - Quantum dashboard endpoints backed by the simulation engine
//   - WebSocket hub for real-time threat and verification broadcasts
//   - JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between the kiosk UI and the station internals: the
// profile store, the flow controller, the capture adapters, and the
// simulation engine. Capture requests block for the adapter's simulated
// duration, so kiosk clients should drive them from a spinner. Verification
// outcomes fan out to the WebSocket hub, the MQTT event feed, and InfluxDB
// when those are configured.
//
// # Security
//
// Authentication uses JWT access tokens issued at registration and login.
// WebSocket connections use single-use tickets to prevent token leakage in
// URLs. The station holds exactly one profile, so tokens carry the profile
// ID as their subject.
//
// # Graceful Degradation
//
// The server operates without MQTT and InfluxDB — captures and the
// dashboard work, only the external event feed and metrics are skipped.
package api
