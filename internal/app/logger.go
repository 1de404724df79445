package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production always logs JSON;
// elsewhere LOG_FORMAT selects "json" or the human readable text
// handler ("pretty" and "text", the defaults).
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg.IsProduction() || (cfg != nil && cfg.LogFormat == "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
