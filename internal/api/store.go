package api

import (
	"sync"

	"corromics/domain/core"
	"corromics/internal/pipeline"
)

// Store keeps finished analyses in memory. When full, the oldest analysis is
// evicted. Nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	capacity int
	order    []core.RunID
	items    map[core.RunID]*pipeline.Analysis
}

// NewStore creates a store holding at most capacity analyses.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		items:    make(map[core.RunID]*pipeline.Analysis, capacity),
	}
}

// Put adds a and returns the id of the analysis it evicted, if any.
func (s *Store) Put(a *pipeline.Analysis) (evicted core.RunID, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[a.ID]; !exists {
		if len(s.order) >= s.capacity {
			evicted, s.order = s.order[0], s.order[1:]
			delete(s.items, evicted)
			ok = true
		}
		s.order = append(s.order, a.ID)
	}
	s.items[a.ID] = a
	return evicted, ok
}

// Get returns the analysis with the given id.
func (s *Store) Get(id core.RunID) (*pipeline.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok {
		return nil, core.NewNotFoundError("analysis", id.String())
	}
	return a, nil
}

// List returns the stored analyses, oldest first.
func (s *Store) List() []*pipeline.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*pipeline.Analysis, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
