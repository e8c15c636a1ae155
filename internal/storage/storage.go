// internal/storage/storage.go
package storage

// Backend is the interface all durable save stores must satisfy. The engine
// keeps exactly one document per installation under a fixed key; backends only
// move opaque bytes.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Document access
	Get(key string) ([]byte, bool, error)
	Put(key string, data []byte) error
	Delete(key string) error
	Has(key string) (bool, error)
}
