package crawler

import (
	"context"
	"sync"

	"github.com/user/site-crawler/internal/repository"
)

// MemoryVisitedSet is a mutex-guarded in-process VisitedSet.
type MemoryVisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryVisitedSet() *MemoryVisitedSet {
	return &MemoryVisitedSet{seen: make(map[string]struct{})}
}

func (s *MemoryVisitedSet) MarkVisited(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[url]; ok {
		return false, nil
	}
	s.seen[url] = struct{}{}
	return true, nil
}

func (s *MemoryVisitedSet) Len(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.seen)), nil
}

// MemoryVisitedSets gives every job a fresh MemoryVisitedSet.
type MemoryVisitedSets struct{}

func (MemoryVisitedSets) NewVisitedSet(_ context.Context, _ string) (repository.VisitedSet, error) {
	return NewMemoryVisitedSet(), nil
}
