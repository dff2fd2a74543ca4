package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements the Storage interface on local disk.
type LocalStorage struct {
	dir string
}

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage instance rooted at dir.
// If dir is empty, a directory under os.TempDir() is used.
// The directory is created if it doesn't exist.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "seedance-archive")
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	return &LocalStorage{dir: dir}, nil
}

// Dir returns the archive directory path.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save writes the media to a file named after the job and returns its path.
func (s *LocalStorage) Save(ctx context.Context, name string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	path := filepath.Join(s.dir, sanitizeName(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write archive file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close archive file: %w", err)
	}

	return path, nil
}

// Open reads an archived file.
func (s *LocalStorage) Open(_ context.Context, location string) (io.ReadCloser, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	return f, nil
}

// Remove deletes archived files, continuing past individual failures.
func (s *LocalStorage) Remove(_ context.Context, locations []string) error {
	var firstErr error
	for _, loc := range locations {
		if err := os.Remove(loc); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", loc, err)
			}
		}
	}
	return firstErr
}

// sanitizeName strips path separators so a name cannot escape the
// archive directory.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.ReplaceAll(name, string(os.PathSeparator), "_")
}
