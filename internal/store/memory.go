package store

import (
	"context"
	"sync"
)

// MemorySnapshotStore is an in-process SnapshotStore. It backs unit tests
// and the degraded mode the persistence manager falls into when the
// durable tier stops responding.
type MemorySnapshotStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{data: make(map[string][]byte)}
}

func (s *MemorySnapshotStore) Read(_ context.Context, userID, testID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.data[userID+":"+testID]
	if !ok {
		return nil, ErrNoSnapshot
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (s *MemorySnapshotStore) Write(_ context.Context, userID, testID string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.data[userID+":"+testID] = cp
	return nil
}

func (s *MemorySnapshotStore) Delete(_ context.Context, userID, testID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID+":"+testID)
	return nil
}

// MemoryLivenessStore is an in-process LivenessStore for tests.
type MemoryLivenessStore struct {
	mu    sync.Mutex
	alive map[string]bool
}

func NewMemoryLivenessStore() *MemoryLivenessStore {
	return &MemoryLivenessStore{alive: make(map[string]bool)}
}

func (s *MemoryLivenessStore) Mark(_ context.Context, userID, testID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alive[userID+":"+testID] = true
	return nil
}

func (s *MemoryLivenessStore) Alive(_ context.Context, userID, testID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive[userID+":"+testID], nil
}

func (s *MemoryLivenessStore) Clear(_ context.Context, userID, testID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alive, userID+":"+testID)
	return nil
}
