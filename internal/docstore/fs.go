package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"labfhir/pkg/platform/sentinel"
)

// FSStore keeps documents on the local filesystem, sharded by the first two
// hash bytes (base/ab/cd/abcd…) so one directory never accumulates every
// document. Writes go through a temp file and rename, so a crash mid-write
// never leaves a truncated document under a valid hash.
type FSStore struct {
	base string
}

// NewFS constructs a filesystem store rooted at base, creating it if needed.
func NewFS(base string) (*FSStore, error) {
	if base == "" {
		return nil, fmt.Errorf("document store base directory is required")
	}
	if err := os.MkdirAll(base, 0o750); err != nil {
		return nil, fmt.Errorf("create document store base: %w", err)
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) path(contentHash string) (string, error) {
	if len(contentHash) < 4 {
		return "", fmt.Errorf("content hash too short: %q", contentHash)
	}
	return filepath.Join(s.base, contentHash[:2], contentHash[2:4], contentHash), nil
}

func (s *FSStore) Put(_ context.Context, contentHash string, data []byte) error {
	target, err := s.path(contentHash)
	if err != nil {
		return err
	}
	if _, err := os.Stat(target); err == nil {
		// Content-addressed: the existing file already holds these bytes.
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create document shard: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".put-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close document: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, contentHash string) ([]byte, error) {
	target, err := s.path(contentHash)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

func (s *FSStore) Exists(_ context.Context, contentHash string) (bool, error) {
	target, err := s.path(contentHash)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat document: %w", err)
	}
	return true, nil
}
