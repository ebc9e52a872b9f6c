package provider

import (
	"strings"
	"sync"
)

// Storage is the local token store, the Go stand-in for the browser's
// local storage. Implementations must be safe for concurrent use.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	Keys() []string
}

// MemoryStorage is the default in-process Storage.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

func (s *MemoryStorage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys
}

// PurgeAuthKeys removes every key that looks provider-related: keys
// carrying the configured prefix, plus anything containing
// "auth-token". Used by sign-out to guarantee no credentials survive
// locally regardless of who wrote them.
func PurgeAuthKeys(s Storage, prefix string) {
	for _, key := range s.Keys() {
		if strings.HasPrefix(key, prefix) || strings.Contains(key, "auth-token") {
			s.Delete(key)
		}
	}
}
