package cache

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func (s *MemoryStore) Get(_ context.Context, href string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[href]
	if !ok {
		return nil, nil
	}
	return record.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, href string, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := record.Clone()
	stored.Href = href
	s.records[href] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, href string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, href)
	return nil
}

// Purge drops records retrieved before the cutoff. Records that were
// never retrieved are kept.
func (s *MemoryStore) Purge(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for href, record := range s.records {
		if record.LastRetrieved != nil && record.LastRetrieved.Before(before) {
			delete(s.records, href)
			purged++
		}
	}
	return purged, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
