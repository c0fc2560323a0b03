package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// DefaultQuotaBytes is the default size limit of one fast-tier entry.
const DefaultQuotaBytes int64 = 5 << 20

var ErrQuotaExceeded = errors.New("fast store quota exceeded")

var validKey = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FileStore keeps one blob per key as a file in a directory. Writes larger
// than the quota are refused.
type FileStore struct {
	dir   string
	quota int64
}

func NewFileStore(dir string, quota int64) (*FileStore, error) {
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir, quota: quota}, nil
}

func (s *FileStore) Quota() int64 {
	return s.quota
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get returns the blob stored under key. The boolean is false when nothing
// is stored.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Put writes the blob through a temporary file and a rename, so readers
// never see a partial entry.
func (s *FileStore) Put(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if int64(len(data)) > s.quota {
		return fmt.Errorf("%s is %d bytes, limit %d: %w", key, len(data), s.quota, ErrQuotaExceeded)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
