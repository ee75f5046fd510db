// Package state implements the durable local session record behind the
// domain.StateStore port: a single JSON file, replaced atomically on
// every save so a crash mid-write can never leave a half-updated record.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"erp-core/internal/domain"
)

// FileStore persists the session record to a JSON file.
// Implements domain.StateStore.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileStore creates a file-backed state store at path. The parent
// directory is created on first save if missing.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Save writes the whole record, replacing any previous one atomically
// via a temp file and rename. Mode 0600: the record carries credentials.
func (f *FileStore) Save(record *domain.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session record: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session record: %w", err)
	}
	return nil
}

// Load reads the persisted record. Returns domain.ErrStateNotFound when
// no record exists and domain.ErrStateCorrupt when one exists but does
// not parse; the caller decides how to recover.
func (f *FileStore) Load() (*domain.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	var record domain.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStateCorrupt, err)
	}
	return &record, nil
}

// Clear removes the persisted record. Clearing an already-empty store
// is not an error.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session record: %w", err)
	}
	return nil
}
