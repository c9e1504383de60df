package storage

import (
	"context"
	"sync"
	"time"

	"github.com/CreativeUnicorns/typedprefs"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This is useful for testing or simple applications where persistence is not required.
type MemoryStorage struct {
	mu    sync.RWMutex
	prefs map[string]*typedprefs.Preference
}

// NewMemoryStorage creates a new instance of MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		prefs: make(map[string]*typedprefs.Preference),
	}
}

// Get retrieves a preference by key.
// It returns typedprefs.ErrNotFound if the preference does not exist.
func (s *MemoryStorage) Get(_ context.Context, key string) (*typedprefs.Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pref, ok := s.prefs[key]
	if !ok {
		return nil, typedprefs.ErrNotFound
	}
	return copyPreference(pref), nil
}

// Set stores a preference. It updates the UpdatedAt field to the current time.
func (s *MemoryStorage) Set(_ context.Context, pref *typedprefs.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefToStore := copyPreference(pref)
	prefToStore.UpdatedAt = time.Now()
	s.prefs[pref.Key] = prefToStore
	return nil
}

// Delete removes a preference.
// It returns typedprefs.ErrNotFound if the preference does not exist.
func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prefs[key]; !ok {
		return typedprefs.ErrNotFound
	}
	delete(s.prefs, key)
	return nil
}

// GetAll retrieves all stored preferences.
func (s *MemoryStorage) GetAll(_ context.Context) (map[string]*typedprefs.Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefsCopy := make(map[string]*typedprefs.Preference, len(s.prefs))
	for k, v := range s.prefs {
		prefsCopy[k] = copyPreference(v)
	}
	return prefsCopy, nil
}

// Clear removes every preference.
func (s *MemoryStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = make(map[string]*typedprefs.Preference)
	return nil
}

// Close is a no-op for MemoryStorage as there are no external resources to release.
func (s *MemoryStorage) Close() error {
	return nil
}

// copyPreference copies the record and any string slice it holds.
func copyPreference(p *typedprefs.Preference) *typedprefs.Preference {
	c := *p
	if set, ok := c.Value.([]string); ok {
		c.Value = append([]string{}, set...)
	}
	return &c
}
