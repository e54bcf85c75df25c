// Package store provides the two storage tiers behind session
// persistence: a durable snapshot store and a volatile liveness store.
// The two are kept separate: the durable tier holds data, the
// volatile tier is purely a liveness flag. Conflating them would make
// "tab reload" indistinguishable from "returned after close".
package store

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by SnapshotStore.Read when nothing is stored
// for the key.
var ErrNoSnapshot = errors.New("snapshot not found")

// SnapshotStore is the durable tier, keyed by (userID, testID). Writes
// must be read-after-write consistent with respect to the resume check.
type SnapshotStore interface {
	Read(ctx context.Context, userID, testID string) ([]byte, error)
	Write(ctx context.Context, userID, testID string, payload []byte) error
	Delete(ctx context.Context, userID, testID string) error
}

// LivenessStore is the volatile tier: a marker that survives reloads of
// the same browsing context but disappears shortly after it closes.
type LivenessStore interface {
	Mark(ctx context.Context, userID, testID string) error
	Alive(ctx context.Context, userID, testID string) (bool, error)
	Clear(ctx context.Context, userID, testID string) error
}
