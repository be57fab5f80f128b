package checkpoint

import (
	"context"
	"sync"

	"wanderly/models"
)

// MemoryStore keeps checkpoints in process. Callers always get copies.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*models.TravelState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*models.TravelState)}
}

func (s *MemoryStore) Get(_ context.Context, threadID string) (*models.TravelState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, st *models.TravelState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.ThreadID] = st.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, threadID)
	return nil
}
