// Package sqlitestorage implements the storage.Backend interface on a GORM
// document table. The default dialector is SQLite (file or in-memory); when
// configured for a shared install it tries Postgres first and falls back to
// local SQLite, so a broken DSN never blocks play.
package sqlitestorage

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/threekingdoms/progression/internal/config"
)

// Document is the single-table schema: one save document per key.
type Document struct {
	Key  string         `gorm:"primaryKey;size:255"`
	Data datatypes.JSON `gorm:"not null"`
}

// Backend persists documents through GORM.
type Backend struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New connects according to cfg and returns a backend. The connection is
// verified in Init, not here.
func New(cfg config.StorageConfig, log zerolog.Logger) (*Backend, error) {
	var db *gorm.DB
	var err error

	switch cfg.Type {
	case "postgres":
		db, err = openPostgres(cfg.Postgres)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to Postgres DB, falling back to SQLite")
			db, err = openSqlite(cfg.Path)
		}
	default:
		db, err = openSqlite(cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open save database: %w", err)
	}

	return &Backend{db: db, log: log}, nil
}

// Init migrates the document table.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(&Document{}); err != nil {
		return fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// Get returns the document stored under key, if any.
func (b *Backend) Get(key string) ([]byte, bool, error) {
	var doc Document
	err := b.db.First(&doc, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc.Data), true, nil
}

// Put upserts the document under key.
func (b *Backend) Put(key string, data []byte) error {
	return b.db.Save(&Document{Key: key, Data: datatypes.JSON(data)}).Error
}

// Delete removes the document under key. Deleting a missing key is a no-op.
func (b *Backend) Delete(key string) error {
	return b.db.Delete(&Document{}, "key = ?", key).Error
}

// Has reports whether a document exists under key.
func (b *Backend) Has(key string) (bool, error) {
	var count int64
	if err := b.db.Model(&Document{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func openPostgres(cfg config.PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	return db, nil
}

// openSqlite opens a SQLite database. If path is empty, uses an in-memory
// database.
func openSqlite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// set PRAGMAS
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	return db, nil
}
