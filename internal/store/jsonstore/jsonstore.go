package jsonstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Makepad-fr/tada/internal/store"
	"github.com/natefinch/atomic"
)

// JSON-backed storage. One human-readable file per key inside Dir.
// Writes go through a temp file + rename so a crash never leaves a torn blob.
// No locking; fine for a local single-user CLI.

const fileExt = ".json"

// Store keeps blobs as <Dir>/<key>.json.
type Store struct {
	Dir string
}

var _ store.Adapter = (*Store)(nil)

// New returns a Store rooted at dir. An empty dir means the working directory.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		dir = wd
	}
	return &Store{Dir: dir}, nil
}

// Path returns the file backing key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.Dir, key+fileExt)
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

func (s *Store) Save(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	p := s.Path(key)
	if err := atomic.WriteFile(p, bytes.NewReader(blob)); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	// atomic.WriteFile keeps the temp file's 0600 mode on new files.
	if err := os.Chmod(p, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
