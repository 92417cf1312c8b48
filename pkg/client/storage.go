package client

import (
	"errors"
	"sync"
)

// ErrStorageQuota is returned by a Storage that has no room left.
var ErrStorageQuota = errors.New("storage quota exceeded")

// Storage is a string key/value store, the role localStorage plays in the
// browser.
type Storage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string)
}

// MemoryStorage keeps items in memory. A positive maxBytes bounds the total
// size of the stored values.
type MemoryStorage struct {
	mu       sync.Mutex
	items    map[string]string
	maxBytes int
}

func NewMemoryStorage(maxBytes int) *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string), maxBytes: maxBytes}
}

func (s *MemoryStorage) GetItem(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *MemoryStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxBytes > 0 {
		size := len(value)
		for k, v := range s.items {
			if k != key {
				size += len(v)
			}
		}
		if size > s.maxBytes {
			return ErrStorageQuota
		}
	}
	s.items[key] = value
	return nil
}

func (s *MemoryStorage) RemoveItem(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}
