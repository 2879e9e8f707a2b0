package browser

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
	"time"
)

func TestCommand(t *testing.T) {
	const u = "https://auth.example.com/authorize?state=x"
	tests := []struct {
		goos     string
		override string
		name     string
		args     []string
	}{
		{"darwin", "", "open", []string{u}},
		{"linux", "", "xdg-open", []string{u}},
		{"windows", "", "rundll32", []string{"url.dll,FileProtocolHandler", u}},
		{"linux", "firefox --new-tab", "firefox", []string{"--new-tab", u}},
		{"plan9", "", "", nil},
		{"linux", "   ", "xdg-open", []string{u}},
		{"darwin", "\t", "open", []string{u}},
	}
	for _, tt := range tests {
		name, args := command(tt.goos, tt.override, u)
		if name != tt.name || !reflect.DeepEqual(args, tt.args) {
			t.Errorf("command(%q, %q) = %q %v, want %q %v", tt.goos, tt.override, name, args, tt.name, tt.args)
		}
	}
}

func TestSystem_MissingLauncher(t *testing.T) {
	t.Setenv("BROWSER", "definitely-not-a-real-browser-binary")
	if err := (System{}).Open(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error for missing launcher")
	}
}

func TestSystem_DoesNotWaitForBrowserExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script launcher")
	}
	script := filepath.Join(t.TempDir(), "slow-browser")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BROWSER", script)

	start := time.Now()
	if err := (System{}).Open(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Open returned after %s, want it to return once the browser starts", elapsed)
	}
}
