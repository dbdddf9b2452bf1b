package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps saves in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, slot string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)

	s.mu.Lock()
	s.slots[slot] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.slots[slot]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return cp, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
