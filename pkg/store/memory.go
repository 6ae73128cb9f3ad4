package store

import (
	"context"
	"sync"

	"github.com/go-training/mtd-vat/pkg/core"
)

// MemoryStore implements core.TokenStore using an in-memory map.
// It is safe for concurrent use and does not outlive the process.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]core.Token
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]core.Token),
	}
}

// Write stores a copy of token under key.
func (m *MemoryStore) Write(ctx context.Context, key string, token *core.Token) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if token == nil {
		return ErrNilToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[key] = *token
	return nil
}

// Read returns a copy of the token stored under key, or nil.
func (m *MemoryStore) Read(ctx context.Context, key string) (*core.Token, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	token, exists := m.tokens[key]
	if !exists {
		return nil, nil
	}
	return &token, nil
}
