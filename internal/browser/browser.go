// Package browser opens URLs in the user's default web browser.
package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Opener opens a URL for the user.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url string) error

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// System launches the platform's URL handler. $BROWSER, when set, wins.
type System struct{}

// Open starts the browser and returns without waiting for it to exit.
// Browsers that stay in the foreground keep running after Open returns.
func (System) Open(_ context.Context, url string) error {
	name, args := command(runtime.GOOS, os.Getenv("BROWSER"), url)
	if name == "" {
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("browser launcher %q not found: %w", name, err)
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func command(goos, override, url string) (string, []string) {
	if fields := strings.Fields(override); len(fields) > 0 {
		return fields[0], append(fields[1:], url)
	}
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}
	default:
		return "", nil
	}
}
