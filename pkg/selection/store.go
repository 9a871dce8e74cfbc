package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/stlplant/tankview/pkg/errors"
)

// MemoryStore keeps selections in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Selection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Selection)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (Selection, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sel, ok := m.data[key]
	return sel, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, s Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// FileStore is a file-based selection store for the CLI.
// Selections are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns ~/.config/tankview/selection.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "tankview", "selection"), nil
}

// NewFileStore creates a file-based selection store.
// If baseDir is empty, defaults to [DefaultDir].
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create selection dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || errors.ValidatePageName(key) != nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid selection key %q", key)
	}
	return filepath.Join(s.baseDir, key+".json"), nil
}

func (s *FileStore) Load(_ context.Context, key string) (Selection, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return Selection{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Selection{}, false, nil
		}
		return Selection{}, false, fmt.Errorf("read selection file: %w", err)
	}

	var sel Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return Selection{}, false, fmt.Errorf("parse selection: %w", err)
	}
	return sel, true, nil
}

func (s *FileStore) Save(_ context.Context, key string, sel Selection) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sel, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write selection file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove selection file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for selection files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
