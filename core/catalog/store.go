package catalog

import (
	"sort"
	"sync"
)

// Store is the published metadata dictionary: canonical and suffixed
// keys mapped to records. It is the engine's output, read concurrently
// by listing/search consumers while a resync runs.
//
// Records are immutable once published; writers replace entries with
// clones instead of mutating them, so readers never need a copy.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Metadata
}

// NewStore creates an empty published store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Metadata)}
}

// Get returns the record published under key. The returned record must
// be treated as read-only.
func (s *Store) Get(key string) (*Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.records[key]
	return m, ok
}

// Put publishes a record under key, replacing any previous record.
func (s *Store) Put(key string, m *Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = m
}

// Delete removes the record published under key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}

// Clear removes every published record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*Metadata)
}

// Len returns the number of published keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Keys returns every published key, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns a point-in-time copy of the key→record mapping. The
// records themselves are shared and read-only.
func (s *Store) Items() map[string]*Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make(map[string]*Metadata, len(s.records))
	for k, v := range s.records {
		items[k] = v
	}
	return items
}
