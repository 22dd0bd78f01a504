package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore keeps artifacts as files in a data directory
type FileStore struct {
	dataDir string
}

// New creates a FileStore, expanding a leading ~ and creating the directory.
func New(dataDir string) (*FileStore, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved data directory.
func (s *FileStore) Dir() string {
	return s.dataDir
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dataDir, filepath.Base(name))
}

// Save writes v as indented JSON.
func (s *FileStore) Save(ctx context.Context, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	return nil
}

// Load decodes the named artifact into v.
func (s *FileStore) Load(ctx context.Context, name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	return nil
}

// ModTime returns the file's modification time.
func (s *FileStore) ModTime(ctx context.Context, name string) (time.Time, error) {
	info, err := os.Stat(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("stat %s: %w", name, err)
	}
	return info.ModTime(), nil
}
