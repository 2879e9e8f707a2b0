package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestFileStore_GetMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "config.json"))

	rec, err := s.Get()
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if len(rec) != 0 {
		t.Errorf("expected empty record, got %v", rec)
	}
}

func TestFileStore_SetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	s := NewFileStore(path)

	if err := s.Set(FieldToken, "tok-1"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Set(FieldOrganizationSlug, "acme"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	rec, err := s.Get()
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if rec.Token() != "tok-1" {
		t.Errorf("Token() = %q, want %q", rec.Token(), "tok-1")
	}
	if rec.OrganizationSlug() != "acme" {
		t.Errorf("OrganizationSlug() = %q, want %q", rec.OrganizationSlug(), "acme")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("file mode = %o, want 600", perm)
		}
	}
}

func TestFileStore_EmptyValueRemovesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := NewFileStore(path)

	if err := s.Update(map[string]string{FieldToken: "tok", FieldEnvironmentID: "env-1"}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if err := s.Set(FieldEnvironmentID, ""); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), FieldEnvironmentID) {
		t.Errorf("file still contains %q:\n%s", FieldEnvironmentID, data)
	}
	if strings.Contains(string(data), `""`) {
		t.Errorf("file contains an empty string:\n%s", data)
	}
}

func TestFileStore_Remove(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	_ = s.Set(FieldGitHubToken, "gh")

	if err := s.Remove(FieldGitHubToken); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if err := s.Remove("never-set"); err != nil {
		t.Fatalf("Remove(absent) error: %v", err)
	}

	rec, _ := s.Get()
	if rec.ProviderToken("github") != "" {
		t.Errorf("github token still present")
	}
}

func TestFileStore_ResetIsIdempotent(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	_ = s.Set(FieldToken, "tok")

	for i := 0; i < 2; i++ {
		if err := s.Reset(); err != nil {
			t.Fatalf("Reset() #%d error: %v", i+1, err)
		}
		rec, err := s.Get()
		if err != nil {
			t.Fatalf("Get() after reset #%d: %v", i+1, err)
		}
		if len(rec) != 0 {
			t.Errorf("record after reset #%d = %v, want empty", i+1, rec)
		}
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)

	rec, err := s.Get()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Get() error = %v, want ErrCorrupt", err)
	}
	if rec.Token() != "" {
		t.Errorf("corrupt file yielded a token")
	}

	// A write over a corrupt file replaces it.
	if err := s.Set(FieldToken, "fresh"); err != nil {
		t.Fatalf("Set() over corrupt file: %v", err)
	}
	rec, err = s.Get()
	if err != nil {
		t.Fatalf("Get() after repair: %v", err)
	}
	if rec.Token() != "fresh" {
		t.Errorf("Token() = %q, want %q", rec.Token(), "fresh")
	}
}

func TestFileStore_PathIsDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)

	rec, err := s.Get()
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("Get() error = %v, want ErrUnreadable", err)
	}
	if len(rec) != 0 {
		t.Errorf("record = %v, want empty", rec)
	}
	var hinted interface{ Hint() string }
	if !errors.As(err, &hinted) || !strings.Contains(hinted.Hint(), path) {
		t.Errorf("error %v carries no hint naming %s", err, path)
	}

	if err := s.Set(FieldToken, "fresh"); err != nil {
		t.Fatalf("Set() over directory: %v", err)
	}
	rec, err = s.Get()
	if err != nil {
		t.Fatalf("Get() after replace: %v", err)
	}
	if rec.Token() != "fresh" {
		t.Errorf("Token() = %q, want %q", rec.Token(), "fresh")
	}
}

func TestFileStore_ResetDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := NewFileStore(path).Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("path still exists after Reset: %v", err)
	}
}

func TestFileStore_LegacyBooleanFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"token":"abc","telemetry":false,"empty":""}`), 0o600); err != nil {
		t.Fatal(err)
	}

	rec, err := NewFileStore(path).Get()
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if rec[FieldTelemetry] != "false" {
		t.Errorf("telemetry = %q, want %q", rec[FieldTelemetry], "false")
	}
	if _, ok := rec["empty"]; ok {
		t.Error("empty string value was kept")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(map[string]string{FieldToken: "tok"})

	rec, _ := s.Get()
	rec[FieldToken] = "mutated"

	again, _ := s.Get()
	if again.Token() != "tok" {
		t.Errorf("Get() returned shared map; token = %q", again.Token())
	}

	_ = s.Update(map[string]string{FieldTelemetry: TelemetryDisabled})
	again, _ = s.Get()
	if !again.TelemetryOptOut() {
		t.Error("TelemetryOptOut() = false after disabling")
	}

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	again, _ = s.Get()
	if len(again) != 0 {
		t.Errorf("record after double reset = %v", again)
	}
}

func TestMigrateLegacy(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, ".saleor-cli.json")
	target := filepath.Join(dir, "saleor", "config.json")
	if err := os.WriteFile(legacy, []byte(`{"token":"old"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := MigrateLegacy(legacy, target, &out); err != nil {
		t.Fatalf("MigrateLegacy() error: %v", err)
	}
	if !strings.Contains(out.String(), "Migrated") {
		t.Errorf("expected migration notice, got %q", out.String())
	}

	rec, err := NewFileStore(target).Get()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Token() != "old" {
		t.Errorf("Token() = %q, want %q", rec.Token(), "old")
	}
	if _, err := os.Stat(legacy); !errors.Is(err, os.ErrNotExist) {
		t.Error("legacy file still exists")
	}

	out.Reset()
	if err := MigrateLegacy(legacy, target, &out); err != nil {
		t.Fatalf("second MigrateLegacy() error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("second migration printed %q", out.String())
	}
}
