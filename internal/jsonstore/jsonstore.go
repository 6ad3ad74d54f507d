package jsonstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Store reads and writes whole JSON documents under a single data directory.
// There is no partial-field update primitive: every Save replaces the full
// document.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Load reads the named document into out. A missing or unreadable file leaves
// out untouched and returns nil, so callers start from their zero-value
// default document.
func (s *Store) Load(name string, out interface{}) error {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		// A missing file is the normal first-run case; anything else is
		// worth a log line before falling back to the default.
		if !os.IsNotExist(err) {
			log.Printf("jsonstore: failed to read %s: %v", name, err)
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("jsonstore: failed to parse %s: %v", name, err)
		return nil
	}
	return nil
}

// Save writes the document atomically: temp-file write, then rename over the
// previous version.
func (s *Store) Save(name string, doc interface{}) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
