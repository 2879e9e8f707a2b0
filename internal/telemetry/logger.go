// Package telemetry provides the CLI's structured logging.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/oklog/ulid/v2"
	"golang.org/x/term"
)

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// NewLogger creates a structured logger writing to w. Terminals get the
// text handler; pipes and files get JSON. Every record passes through a
// RedactFilter so registered tokens never reach the output.
func NewLogger(w io.Writer, level slog.Level) (*slog.Logger, *RedactFilter) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isTerminal(w) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	filter := NewRedactFilter(handler)
	return slog.New(filter), filter
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WithCorrelationID adds a correlation ID to the context.
// If id is empty, a new ULID is generated.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = ulid.Make().String()
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID retrieves the correlation ID from context.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// CommandLogger returns a logger scoped to a command invocation.
func CommandLogger(logger *slog.Logger, ctx context.Context, command string) *slog.Logger {
	attrs := []any{
		slog.String("command", command),
	}
	if id := CorrelationID(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	return logger.With(attrs...)
}
