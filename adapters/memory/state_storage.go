// Package memory holds in-process adapters used when no database is configured and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StateStorage keeps UI state blobs in a map
type StateStorage struct {
	mu    sync.RWMutex
	blobs map[uuid.UUID]map[string][]byte
}

// NewStateStorage creates an empty storage
func NewStateStorage() *StateStorage {
	return &StateStorage{blobs: make(map[uuid.UUID]map[string][]byte)}
}

func (s *StateStorage) GetState(_ context.Context, sessionID uuid.UUID, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.blobs[sessionID][key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

func (s *StateStorage) PutState(_ context.Context, sessionID uuid.UUID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blobs[sessionID] == nil {
		s.blobs[sessionID] = make(map[string][]byte)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.blobs[sessionID][key] = stored
	return nil
}

func (s *StateStorage) DeleteState(_ context.Context, sessionID uuid.UUID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs[sessionID], key)
	if len(s.blobs[sessionID]) == 0 {
		delete(s.blobs, sessionID)
	}
	return nil
}
