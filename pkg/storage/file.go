package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/licensetower/pkg/errors"
)

// File stores each blob as a JSON file in a directory.
// Writes go to a temporary file that is renamed into place, so a crash
// mid-write never leaves a truncated snapshot behind.
type File struct {
	mu  sync.Mutex
	dir string
}

// NewFile creates a file store in dir. An empty dir selects [DefaultDir].
// The directory will be created if it doesn't exist.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "resolve cache directory")
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create %s", dir)
	}
	return &File{dir: dir}, nil
}

// Dir returns the directory holding the blobs.
func (f *File) Dir() string { return f.dir }

// Path returns the file path used for key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

// Get reads the blob stored under key.
func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "read %s", key)
	}
	return data, true, nil
}

// Update atomically replaces the blob stored under key.
func (f *File) Update(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	if err := os.Rename(tmp.Name(), f.Path(key)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "replace %s", key)
	}
	return nil
}

// Close does nothing for the file store.
func (f *File) Close() error { return nil }

var _ Store = (*File)(nil)
