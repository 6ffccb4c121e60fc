package testutil

import (
	"context"
	"sync"
)

// InMemoryStudentStore implements student.Repository
type InMemoryStudentStore struct {
	mu    sync.RWMutex
	links map[string]bool
}

func NewInMemoryStudentStore() *InMemoryStudentStore {
	return &InMemoryStudentStore{
		links: make(map[string]bool),
	}
}

// Link records a parent-student relationship
func (s *InMemoryStudentStore) Link(parentID, studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[parentID+":"+studentID] = true
}

func (s *InMemoryStudentStore) ParentLinked(ctx context.Context, parentID, studentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.links[parentID+":"+studentID], nil
}

func (s *InMemoryStudentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = make(map[string]bool)
}
