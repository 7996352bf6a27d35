package storage

import (
	"context"
	"sync"

	"github.com/yousafkhamza/devops-mcq-bot/internal/repository"
)

// MemoryKV is an in-memory key-value store. It backs single-node deployments
// and keeps the quiz core testable without a database.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		data: make(map[string]string),
	}
}

// Get returns the value for key, or repository.ErrKeyNotFound.
func (s *MemoryKV) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return value, nil
}

// Set stores the value for key, overwriting any previous value.
func (s *MemoryKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}
