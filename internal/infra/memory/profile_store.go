package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Key-value entries mirroring the mobile app's stored defaults.
const (
	keyActiveChild = "prenomEnfant"
	keyChildNames  = "childNames"
	keyLegacyChild = "childName"
)

// ProfileStore keeps the child profile entries in process memory.
type ProfileStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{entries: make(map[string]string)}
}

func (s *ProfileStore) ActiveChild(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[keyActiveChild], nil
}

func (s *ProfileStore) SetActiveChild(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[keyActiveChild] = name
	return nil
}

func (s *ProfileStore) ChildNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	raw, ok := s.entries[keyChildNames]
	s.mu.RUnlock()
	if !ok || raw == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("decode child names: %w", err)
	}
	return names, nil
}

func (s *ProfileStore) SetChildNames(_ context.Context, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode child names: %w", err)
	}
	s.mu.Lock()
	s.entries[keyChildNames] = string(raw)
	s.mu.Unlock()
	return nil
}

// MigrateLegacyKey copies the old childName entry into prenomEnfant when
// the latter is still empty, then drops the old key. The mobile app did
// this on startup; keeping it makes old stores load cleanly.
func (s *ProfileStore) MigrateLegacyKey(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.entries[keyLegacyChild]
	if !ok {
		return nil
	}
	if s.entries[keyActiveChild] == "" {
		s.entries[keyActiveChild] = old
	}
	delete(s.entries, keyLegacyChild)
	return nil
}

// Seed is test-only: it primes raw entries, including the legacy key.
func (s *ProfileStore) Seed(key, value string) {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
}
