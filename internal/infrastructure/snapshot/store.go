// internal/infrastructure/snapshot/store.go
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no snapshot exists for a key
	ErrNotFound = errors.New("snapshot not found")
	// ErrCorrupt is returned when a stored snapshot cannot be decoded
	ErrCorrupt = errors.New("snapshot is corrupt")
)

// Store is a device-local durable key/value store for client state that must
// survive reloads: carts, last-known orders, the last good menu
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CartKey is the snapshot key of a browser session's cart
func CartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// OrderKey is the snapshot key of the last-known state of an order
func OrderKey(orderID string) string {
	return fmt.Sprintf("order:snapshot:%s", orderID)
}

// MenuKey is the snapshot key of the last menu fetched successfully
const MenuKey = "menu:latest"

// GetJSON loads and decodes a snapshot. Undecodable content yields ErrCorrupt.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// PutJSON encodes and stores a snapshot
func PutJSON(ctx context.Context, s Store, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}
