// Package memory provides in-memory implementations of every port. They
// back the default zero-config workspace and most of the test suite.
package memory

import (
	"context"
	"sync"
)

// LocalStore is an in-memory key/value store.
type LocalStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewLocalStore creates an empty store.
func NewLocalStore() *LocalStore {
	return &LocalStore{data: make(map[string][]byte)}
}

// Get returns the value for key and whether it exists.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores value under key, replacing any previous value.
func (s *LocalStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
