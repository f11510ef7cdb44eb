// Package logging provides structured logging for BioFusion Core.
//
// It wraps the standard library's log/slog with:
//   - Configuration-driven format selection (JSON or text)
//   - Level filtering (debug, info, warn, error)
//   - Default fields attached to every record (service, version)
//   - Component-scoped child loggers via With()
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("profile registered", "profile_id", id)
//
//	captureLog := log.With("component", "capture")
//	captureLog.Debug("camera released", "tracks", 0)
package logging
