// internal/bins/memory.go
package bins

import (
	"context"
	"sync"
)

// MemoryStore keeps the collection in process memory. It backs the service
// when no database is configured and doubles as the test store; SaveErr,
// when set, makes the next saves fail to exercise the unsynced-state path.
type MemoryStore struct {
	mu        sync.Mutex
	data      Collection
	SaveErr   error
	SaveCount int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: Collection{}}
}

func (s *MemoryStore) Load(_ context.Context) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, c Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveCount++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.data = c.Clone()
	return nil
}

// Persisted returns a deep copy of what the store last accepted.
func (s *MemoryStore) Persisted() Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}
