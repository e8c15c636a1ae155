// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/threekingdoms/progression/internal/config"
	"github.com/threekingdoms/progression/internal/storage/memory"
	sqlitestorage "github.com/threekingdoms/progression/internal/storage/sqlite"
)

// Verify both implementations satisfy the Backend interface
var (
	_ Backend = (*memory.Backend)(nil)
	_ Backend = (*sqlitestorage.Backend)(nil)
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "sqlite", "postgres":
		return sqlitestorage.New(cfg, log)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
