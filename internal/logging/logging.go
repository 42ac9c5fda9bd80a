// Package logging builds the JSON loggers the kitchen services write with.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger tagging every record with the service name and
// host.
func New(w io.Writer, service string, level slog.Level) *slog.Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", service, "hostname", hostname)
}
