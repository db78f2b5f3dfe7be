package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrExists is returned by Put when a backup with the same key exists.
var ErrExists = errors.New("backup already exists")

// FSStore writes backups under a root directory.
type FSStore struct {
	root string
}

// NewFS returns a store rooted at dir, creating it if needed.
func NewFS(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, errors.New("backup directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{root: dir}, nil
}

func (s *FSStore) Driver() string { return DriverFS }

// Put writes data to root/key. Existing backups are never overwritten, even
// by a concurrent Put of the same key.
func (s *FSStore) Put(_ context.Context, key string, data []byte) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.root, filepath.FromSlash(k))
	if err := createFile(path, data); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, key)
		}
		return "", err
	}
	return path, nil
}

// createFile writes data to a temporary file next to path and hard-links
// it into place, so path appears complete or not at all and an existing
// file is never replaced.
func createFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".backup-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Link(tmp.Name(), path)
}

// sanitizeKey rejects keys that would escape the root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("empty key")
	}
	if strings.HasPrefix(key, "/") || filepath.IsAbs(key) {
		return "", errors.New("invalid absolute key")
	}
	if slices.Contains(strings.Split(filepath.ToSlash(key), "/"), "..") {
		return "", errors.New("invalid key contains '..' segment")
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}
