// Package cache is the persistent local snapshot store: string-keyed JSON
// blobs that survive process restarts, read and written as whole snapshots.
// Absent or undecodable content is a cache miss, never an error.
package cache

import (
	"context"
	"encoding/json"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads the snapshot under key into dest. Returns (true, nil) when
// found and decoded, (false, nil) when missing or undecodable.
func GetJSON(ctx context.Context, store Store, key string, dest any) (bool, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON overwrites the snapshot under key with v.
func SetJSON(ctx context.Context, store Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw)
}
