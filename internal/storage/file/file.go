// Package file implements the storage surface as a directory of flat files,
// one per key, on the shopper's own device. It is the durable local profile
// used when no shared redis instance is configured.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/KyoTung/camera-store-client/pkg/errors"
)

// Store persists each key as a file under a base directory. Writes go
// through a temp file and rename, so readers never observe a torn value.
type Store struct {
	dir string
}

// New creates a file-backed store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Get reads the value stored under key.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.Wrap(apperrors.ErrNotFound, fmt.Sprintf("storage key %q", key))
		}
		return "", fmt.Errorf("read storage key %q: %w", key, err)
	}
	return string(data), nil
}

// Set overwrites the value stored under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for key %q: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write storage key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close storage key %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit storage key %q: %w", key, err)
	}
	return nil
}

// Delete removes the key. Absent keys are a no-op.
func (s *Store) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete storage key %q: %w", key, err)
	}
	return nil
}

// path maps a key to its backing file, rejecting keys that would escape the
// base directory.
func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid storage key %q", key))
	}
	return filepath.Join(s.dir, key+".json"), nil
}
