package persistence

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"
)

// InMemoryStore is a simple, goroutine-safe GraphStore backed by a map.
type InMemoryStore struct {
	mu     sync.RWMutex
	graphs map[string]GraphRecord
	now    func() time.Time
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		graphs: make(map[string]GraphRecord),
		now:    time.Now,
	}
}

// Ensure InMemoryStore implements the interface.
var _ GraphStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveGraph(rec GraphRecord) error {
	if rec.ID == "" {
		return errors.New("graph id is required")
	}
	if err := rec.Graph.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Graph = cloneGraph(rec.Graph)
	rec.UpdatedAt = s.now()
	s.graphs[rec.ID] = rec
	return nil
}

func (s *InMemoryStore) GetGraph(id string) (GraphRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.graphs[id]
	if !ok {
		return GraphRecord{}, ErrGraphNotFound
	}
	rec.Graph = cloneGraph(rec.Graph)
	return rec, nil
}

func (s *InMemoryStore) ListGraphs() ([]GraphRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]GraphRecord, 0, len(s.graphs))
	for _, rec := range s.graphs {
		rec.Graph = cloneGraph(rec.Graph)
		result = append(result, rec)
	}
	slices.SortFunc(result, func(a, b GraphRecord) int { return strings.Compare(a.ID, b.ID) })
	return result, nil
}

func (s *InMemoryStore) DeleteGraph(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graphs[id]; !ok {
		return ErrGraphNotFound
	}
	delete(s.graphs, id)
	return nil
}
