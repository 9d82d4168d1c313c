package memory

import (
	"context"
	"sync"
)

// Storage keeps client scopes in process memory. Sessions do not survive a restart.
type Storage struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

// NewStorage creates an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{
		scopes: make(map[string]map[string]string),
	}
}

// Get returns the value of key in scope.
func (s *Storage) Get(ctx context.Context, scope, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.scopes[scope]
	if !ok {
		return "", false, nil
	}
	v, ok := entries[key]
	return v, ok, nil
}

// Put writes all entries under one lock.
func (s *Storage) Put(ctx context.Context, scope string, entries map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.scopes[scope]
	if !ok {
		existing = make(map[string]string, len(entries))
		s.scopes[scope] = existing
	}
	for k, v := range entries {
		existing[k] = v
	}
	return nil
}

// Remove deletes keys; an emptied scope is dropped.
func (s *Storage) Remove(ctx context.Context, scope string, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.scopes[scope]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(entries, k)
	}
	if len(entries) == 0 {
		delete(s.scopes, scope)
	}
	return nil
}

// Len returns the number of live scopes.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scopes)
}
