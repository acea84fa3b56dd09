package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const fileStoreName = "preferences.json"

// FileStore keeps the preference document as one JSON file in a directory.
//
// Reads are tolerant: a missing or corrupt file yields an empty document so
// the dashboard can fall back to defaults. Writes are read-modify-write with
// an atomic rename, preserving every key the caller did not set.
type FileStore struct {
	Dir string
}

// Path returns the document path. Exposed so the TUI can watch it.
func (s FileStore) Path() string {
	return filepath.Join(s.Dir, fileStoreName)
}

func (s FileStore) Read(ctx context.Context) (Document, error) {
	raw, err := s.readRaw()
	if err != nil {
		return Document{}, err
	}
	return fromRaw(raw), nil
}

func (s FileStore) readRaw() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		// Corrupt document: treat as missing. The in-memory state is the
		// source of truth; the next write replaces the file.
		return map[string]json.RawMessage{}, nil
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}

func (s FileStore) Write(ctx context.Context, doc Document) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("ensure prefs dir: %w", err)
	}
	existing, err := s.readRaw()
	if err != nil {
		return err
	}
	merged, err := mergeRaw(existing, doc)
	if err != nil {
		return err
	}
	b, err := marshalRaw(merged)
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, fileStoreName+".*.tmp", s.Path(), b, 0o644)
}

// atomicWriteFile writes via a unique temp file + rename so concurrent
// writers (TUI + CLI) cannot interleave partial documents.
func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
