package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

const redacted = "[redacted]"

// tokenKeys are attribute keys whose values are always hidden.
var tokenKeys = map[string]bool{
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"id_token":      true,
	"code":          true,
	"authorization": true,
}

// RedactFilter wraps a slog handler and scrubs credentials from records:
// values registered with AddSecret anywhere in the message or string
// attributes, and any attribute whose key names a token.
type RedactFilter struct {
	inner   slog.Handler
	mu      *sync.RWMutex
	secrets map[string]struct{}
}

// NewRedactFilter creates a redacting handler around inner.
func NewRedactFilter(inner slog.Handler) *RedactFilter {
	return &RedactFilter{
		inner:   inner,
		mu:      &sync.RWMutex{},
		secrets: make(map[string]struct{}),
	}
}

// AddSecret registers a value to be hidden from log output.
func (f *RedactFilter) AddSecret(value string) {
	if value == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[value] = struct{}{}
}

// Enabled delegates to the inner handler.
func (f *RedactFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.inner.Enabled(ctx, level)
}

// Handle rewrites the record with credentials removed.
func (f *RedactFilter) Handle(ctx context.Context, record slog.Record) error {
	secrets := f.snapshot()

	out := slog.NewRecord(record.Time, record.Level, scrub(record.Message, secrets), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a, secrets))
		return true
	})
	return f.inner.Handle(ctx, out)
}

// WithAttrs redacts the attributes before handing them to the inner handler.
// The returned handler shares the secret set with f.
func (f *RedactFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	secrets := f.snapshot()
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redactAttr(a, secrets)
	}
	return &RedactFilter{inner: f.inner.WithAttrs(clean), mu: f.mu, secrets: f.secrets}
}

// WithGroup delegates to the inner handler and shares the secret set.
func (f *RedactFilter) WithGroup(name string) slog.Handler {
	return &RedactFilter{inner: f.inner.WithGroup(name), mu: f.mu, secrets: f.secrets}
}

// RedactString hides registered secrets in s.
func (f *RedactFilter) RedactString(s string) string {
	return scrub(s, f.snapshot())
}

func (f *RedactFilter) snapshot() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.secrets))
	for s := range f.secrets {
		out = append(out, s)
	}
	return out
}

func redactAttr(a slog.Attr, secrets []string) slog.Attr {
	if tokenKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, redacted)
	}
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, scrub(a.Value.String(), secrets))
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case error:
			return slog.String(a.Key, scrub(v.Error(), secrets))
		case fmt.Stringer:
			return slog.String(a.Key, scrub(v.String(), secrets))
		}
	case slog.KindLogValuer:
		return redactAttr(slog.Attr{Key: a.Key, Value: a.Value.Resolve()}, secrets)
	case slog.KindGroup:
		group := a.Value.Group()
		clean := make([]any, len(group))
		for i, g := range group {
			clean[i] = redactAttr(g, secrets)
		}
		return slog.Group(a.Key, clean...)
	}
	return a
}

func scrub(s string, secrets []string) string {
	for _, secret := range secrets {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}
