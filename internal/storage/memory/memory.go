// internal/storage/memory/memory.go
package memory

import (
	"sync"
)

// Backend stores documents in memory. Used by tests and ephemeral runs where
// the save should not outlive the process.
type Backend struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		docs: make(map[string][]byte),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// Get returns the document stored under key, if any.
func (b *Backend) Get(key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.docs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// Put stores data under key, replacing any existing document.
func (b *Backend) Put(key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	b.docs[key] = stored
	return nil
}

// Delete removes the document under key. Deleting a missing key is a no-op.
func (b *Backend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.docs, key)
	return nil
}

// Has reports whether a document exists under key.
func (b *Backend) Has(key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.docs[key]
	return ok, nil
}
