// Package store defines the key-value contract the list is persisted through.
//
// An Adapter holds opaque blobs by key. The list manager owns the encoding and
// always writes the whole collection as one blob under Key.
package store

import (
	"context"
	"errors"
)

// Key is the fixed key the todo collection is stored under.
const Key = "todos"

// ErrNotFound is returned by Load when no blob exists for a key.
var ErrNotFound = errors.New("blob not found")

// Adapter is a get/set store over serialized blobs.
type Adapter interface {
	// Load returns the blob stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the blob stored under key.
	Save(ctx context.Context, key string, blob []byte) error
	Close() error
}
