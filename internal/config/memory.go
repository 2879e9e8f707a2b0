package config

import "sync"

// MemoryStore is an in-memory Store used by tests and dry runs.
type MemoryStore struct {
	mu     sync.Mutex
	record Record
	writes int
}

// NewMemoryStore creates a memory store seeded with initial fields.
func NewMemoryStore(initial map[string]string) *MemoryStore {
	rec := Record{}
	rec.apply(initial)
	return &MemoryStore{record: rec}
}

// Get returns a copy of the record.
func (s *MemoryStore) Get() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone(), nil
}

// Set stores a single field.
func (s *MemoryStore) Set(field, value string) error {
	return s.Update(map[string]string{field: value})
}

// Remove deletes a single field.
func (s *MemoryStore) Remove(field string) error {
	return s.Update(map[string]string{field: ""})
}

// Update merges fields into the record.
func (s *MemoryStore) Update(fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.apply(fields)
	s.writes++
	return nil
}

// Reset clears the record.
func (s *MemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = Record{}
	s.writes++
	return nil
}

// Writes returns the number of mutations applied so far.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
