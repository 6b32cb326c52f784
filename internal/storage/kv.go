// Package storage is the persistence adapter: one JSON record per player id
// in a durable keyed store, with forward migration and offline catch-up
// applied at load time.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when no record exists for the key.
var ErrNotFound = errors.New("storage: record not found")

// KV is the durable keyed store the adapter writes player records to.
// Writes are last-write-wins; the engine performs no cross-process locking.
type KV interface {
	Get(ctx context.Context, playerID int64) ([]byte, error)
	Put(ctx context.Context, playerID int64, data []byte) error
}
