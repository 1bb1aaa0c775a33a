package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// JSONStore persists the registry document as a single JSON file. Writes
// go to a temp file in the same directory and rename over the old file so
// a failed write never corrupts the previous valid state.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store backed by the given file path, creating
// parent directories as needed.
func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		return nil, errors.New("data file path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return &JSONStore{path: path}, nil
}

// Path returns the backing file path.
func (s *JSONStore) Path() string { return s.path }

// Load reads the full document. A missing file is an empty registry, not
// an error.
func (s *JSONStore) Load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc, nil
}

// Save serializes the document and atomically replaces the backing file.
func (s *JSONStore) Save(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".markbook-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
