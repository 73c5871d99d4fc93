// Package logging sets up the single structured logger every component
// is handed at construction, rather than reaching for the log package's
// global logger the way the teacher project does.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text-handler slog.Logger writing to w at the given
// level. Workers additionally tag every record with their worker_id via
// slog.Logger.With before passing it down.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
