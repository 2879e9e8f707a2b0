package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(&buf, slog.LevelInfo)

	logger.Info("polling job", "job_id", "job-123")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["job_id"] != "job-123" {
		t.Errorf("job_id = %v", entry["job_id"])
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %q", buf.String())
	}
}

func TestRedactFilter_Secrets(t *testing.T) {
	var buf bytes.Buffer
	logger, filter := NewLogger(&buf, slog.LevelDebug)
	filter.AddSecret("s3cr3t-token")

	logger.Debug("sending header Token s3cr3t-token", "header", "Token s3cr3t-token")

	out := buf.String()
	if strings.Contains(out, "s3cr3t-token") {
		t.Fatalf("secret leaked: %s", out)
	}
	if !strings.Contains(out, redacted) {
		t.Errorf("expected placeholder in %s", out)
	}
}

func TestRedactFilter_TokenKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(&buf, slog.LevelDebug)

	logger.With("access_token", "abc").Info("exchanged", slog.Group("oauth", "refresh_token", "def", "expiry", "1h"))

	out := buf.String()
	if strings.Contains(out, "abc") || strings.Contains(out, "def") {
		t.Fatalf("token attribute leaked: %s", out)
	}
	if !strings.Contains(out, "1h") {
		t.Errorf("non-secret attribute lost: %s", out)
	}
}

type endpoint string

func (e endpoint) String() string { return "https://api.example.com/?key=" + string(e) }

func TestRedactFilter_ErrorAndStringerValues(t *testing.T) {
	var buf bytes.Buffer
	logger, filter := NewLogger(&buf, slog.LevelDebug)
	filter.AddSecret("secret-xyz")

	err := fmt.Errorf("status check: %w", errors.New("401: bad token secret-xyz"))
	logger.Warn("retrying", "error", err, "url", endpoint("secret-xyz"))
	logger.With("cause", err).Info("still failing")

	out := buf.String()
	if strings.Contains(out, "secret-xyz") {
		t.Fatalf("secret leaked through error or Stringer attribute: %s", out)
	}
	if !strings.Contains(out, "401: bad token "+redacted) {
		t.Errorf("error message lost: %s", out)
	}
	if !strings.Contains(out, "api.example.com") {
		t.Errorf("Stringer value lost: %s", out)
	}
}

func TestRedactFilter_AddSecretAfterWith(t *testing.T) {
	var buf bytes.Buffer
	logger, filter := NewLogger(&buf, slog.LevelDebug)
	child := logger.With("command", "login")

	filter.AddSecret("late-secret")
	child.Info("got late-secret")

	if strings.Contains(buf.String(), "late-secret") {
		t.Fatalf("secret registered after With() leaked: %s", buf.String())
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	id := CorrelationID(ctx)
	if len(id) != 26 {
		t.Errorf("generated id %q is not a ULID", id)
	}

	ctx = WithCorrelationID(context.Background(), "fixed")
	if got := CorrelationID(ctx); got != "fixed" {
		t.Errorf("CorrelationID() = %q, want %q", got, "fixed")
	}
	if got := CorrelationID(context.Background()); got != "" {
		t.Errorf("empty context returned %q", got)
	}
}

func TestCommandLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(&buf, slog.LevelInfo)
	ctx := WithCorrelationID(context.Background(), "corr-1")

	CommandLogger(logger, ctx, "backup create").Info("started")

	out := buf.String()
	if !strings.Contains(out, `"command":"backup create"`) || !strings.Contains(out, `"correlation_id":"corr-1"`) {
		t.Errorf("missing scoped attributes: %s", out)
	}
}
