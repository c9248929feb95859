package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger tagged with the service name. Records
// carry trace_id/span_id whenever the context holds a sampled span.
func NewLogger(env, service string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler)).With("service", service)
}
