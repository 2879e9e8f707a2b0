package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore implements Store using a JSON file. Every mutation reads the
// whole file and replaces it atomically with a temp file and rename.
// Concurrent CLI processes are not coordinated: last writer wins.
type FileStore struct {
	Path string
}

// NewFileStore creates a file-backed credential store.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultPath returns the credential file location: $SALEOR_CLI_CONFIG,
// then $XDG_CONFIG_HOME/saleor/config.json, then ~/.config/saleor/config.json.
func DefaultPath() string {
	if p := os.Getenv("SALEOR_CLI_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "saleor-config.json")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "saleor", "config.json")
}

// fileError carries a remediation hint naming the credential file.
type fileError struct {
	path string
	err  error
}

func (e *fileError) Error() string { return e.err.Error() }
func (e *fileError) Unwrap() error { return e.err }

// Hint tells the user how to recover a broken credential file.
func (e *fileError) Hint() string {
	return fmt.Sprintf("check the permissions of %s, or remove it and run `saleor login` again", e.path)
}

// Get reads the record. A missing file is an empty record; a file that
// cannot be read or parsed is an empty record plus an error wrapping
// ErrUnreadable or ErrCorrupt.
func (s *FileStore) Get() (Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, &fileError{path: s.Path, err: fmt.Errorf("%w: %s: %v", ErrUnreadable, s.Path, err)}
	}
	if len(data) == 0 {
		return Record{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, &fileError{path: s.Path, err: fmt.Errorf("%w: %s: %v", ErrCorrupt, s.Path, err)}
	}

	rec := make(Record, len(raw))
	for k, v := range raw {
		// Older files stored booleans for flags; keep them as strings.
		switch val := v.(type) {
		case string:
			if val != "" {
				rec[k] = val
			}
		case bool:
			rec[k] = fmt.Sprintf("%t", val)
		case float64:
			rec[k] = fmt.Sprintf("%v", val)
		}
	}
	return rec, nil
}

// Set stores a single field.
func (s *FileStore) Set(field, value string) error {
	return s.Update(map[string]string{field: value})
}

// Remove deletes a single field.
func (s *FileStore) Remove(field string) error {
	return s.Update(map[string]string{field: ""})
}

// Update merges fields into the record and writes the file once.
// A corrupt or unreadable file is replaced rather than merged.
func (s *FileStore) Update(fields map[string]string) error {
	rec, err := s.Get()
	if err != nil && !errors.Is(err, ErrCorrupt) && !errors.Is(err, ErrUnreadable) {
		return err
	}
	rec.apply(fields)
	return s.write(rec)
}

// Reset removes the credential file. An empty directory at the path is
// removed too.
func (s *FileStore) Reset() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &fileError{path: s.Path, err: fmt.Errorf("removing %s: %w", s.Path, err)}
	}
	return nil
}

func (s *FileStore) write(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing credentials: %w", err)
	}
	if info, err := os.Stat(s.Path); err == nil && info.IsDir() {
		if err := os.Remove(s.Path); err != nil {
			return &fileError{path: s.Path, err: fmt.Errorf("%s is a directory: %w", s.Path, err)}
		}
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return &fileError{path: s.Path, err: fmt.Errorf("replacing %s: %w", s.Path, err)}
	}
	return nil
}
