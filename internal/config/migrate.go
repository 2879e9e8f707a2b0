package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LegacyPath returns the credential file location used by older releases.
func LegacyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".saleor-cli.json")
}

// MigrateLegacy moves a credential file from legacyPath to path when path
// does not exist yet. A notice is written to w after a successful move.
func MigrateLegacy(legacyPath, path string, w io.Writer) error {
	if legacyPath == "" || legacyPath == path {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if _, err := os.Stat(legacyPath); err != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.Rename(legacyPath, path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("migrating credential file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	fmt.Fprintf(w, "Notice: Migrated credential file '%s' → '%s'\n", legacyPath, path)
	return nil
}
