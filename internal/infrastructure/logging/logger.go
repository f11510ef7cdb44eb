package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/biofusionhq/biofusion-core/internal/infrastructure/config"
)

// Logger is the station's structured logger, a thin wrapper over
// slog.Logger that stamps every record with the service name and
// version. Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a logger from the config's logging section: level filter,
// json or text format, stdout or stderr. Unrecognised values fall back
// to info/json/stdout rather than failing startup.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "biofusion"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel maps a config string onto a slog level, defaulting to
// info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger carrying extra default attributes.
//
//	captureLog := log.With("component", "capture")
//	captureLog.Info("camera acquired") // includes component=capture
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default is the early-startup logger, used before config loads: info
// level, JSON, stdout.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
