// Package memstore is an in-memory store.Adapter. Nothing survives the process.
package memstore

import (
	"bytes"
	"context"

	"github.com/Makepad-fr/tada/internal/store"
)

type Store struct {
	blobs map[string][]byte

	// Saves counts successful Save calls.
	Saves int
	// FailSave, when set, is returned by Save instead of writing.
	FailSave error
}

var _ store.Adapter = (*Store)(nil)

func New() *Store {
	return &Store{blobs: map[string][]byte{}}
}

// Seed stores blob under key without counting a save.
func (s *Store) Seed(key string, blob []byte) {
	s.blobs[key] = bytes.Clone(blob)
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, ok := s.blobs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return bytes.Clone(b), nil
}

func (s *Store) Save(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.FailSave != nil {
		return s.FailSave
	}
	s.blobs[key] = bytes.Clone(blob)
	s.Saves++
	return nil
}

func (s *Store) Close() error { return nil }
