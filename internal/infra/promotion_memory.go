package infra

import (
	"fmt"
	"sort"
	"sync"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

// MemoryPromotionStore is an in-memory domain.PromotionStore.
// Used by tests and the integration suite in place of the registry.
type MemoryPromotionStore struct {
	mu      sync.Mutex
	entries map[string]domain.TrayEntry
	readErr error
	writes  int
}

// NewMemoryPromotionStore creates a store seeded with entries.
func NewMemoryPromotionStore(entries ...domain.TrayEntry) *MemoryPromotionStore {
	s := &MemoryPromotionStore{entries: make(map[string]domain.TrayEntry)}
	for _, e := range entries {
		s.entries[e.Key] = e
	}
	return s
}

// SetReadError makes Entries fail with err until cleared with nil.
func (s *MemoryPromotionStore) SetReadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// Put adds or replaces an entry.
func (s *MemoryPromotionStore) Put(e domain.TrayEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Key] = e
}

// Get returns one entry by key.
func (s *MemoryPromotionStore) Get(key string) (domain.TrayEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// Writes returns how many SetPromoted calls succeeded.
func (s *MemoryPromotionStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Entries returns all entries sorted by key.
func (s *MemoryPromotionStore) Entries() ([]domain.TrayEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}

	result := make([]domain.TrayEntry, 0, len(s.entries))
	for _, e := range s.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// SetPromoted overwrites the promoted flag of an existing entry.
func (s *MemoryPromotionStore) SetPromoted(key string, promoted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("tray entry %q not found", key)
	}
	e.Promoted = promoted
	s.entries[key] = e
	s.writes++
	return nil
}

// Ensure MemoryPromotionStore implements domain.PromotionStore.
var _ domain.PromotionStore = (*MemoryPromotionStore)(nil)
