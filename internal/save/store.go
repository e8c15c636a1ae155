package save

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/threekingdoms/progression/internal/storage"
)

// Store owns the canonical in-memory record and its durable copy. One store
// per installation; the host builds it once and injects it into the
// progression API.
type Store struct {
	backend storage.Backend
	log     zerolog.Logger
	key     string
	rec     *Record

	// OTEL metrics
	writes       metric.Int64Counter
	loadFailures metric.Int64Counter
	migrations   metric.Int64Counter
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key the save document lives under.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// NewStore creates a store over the given backend. The in-memory record
// starts at defaults until Load replaces it.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewStore(backend storage.Backend, log zerolog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		log:     log,
		key:     DefaultSaveKey,
		rec:     Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}

	m := meter()
	var err error

	s.writes, err = m.Int64Counter(
		"save.writes",
		metric.WithDescription("Total save documents written"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating writes counter: %w", err)
	}

	s.loadFailures, err = m.Int64Counter(
		"save.load.failures",
		metric.WithDescription("Total load attempts that fell back to defaults"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating load failures counter: %w", err)
	}

	s.migrations, err = m.Int64Counter(
		"save.migrations",
		metric.WithDescription("Total documents run through schema migration"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating migrations counter: %w", err)
	}

	return s, nil
}

// Record returns the live record. Only the progression API should mutate it.
func (s *Store) Record() *Record {
	return s.rec
}

// Key returns the storage key in use.
func (s *Store) Key() string {
	return s.key
}

// Load reads and migrates the durable document. Returns false when there is
// no document or it cannot be parsed; the in-memory record stays at defaults
// so play continues as a new game. On success the migrated shape is persisted
// immediately, making future loads idempotent.
func (s *Store) Load() bool {
	data, ok, err := s.backend.Get(s.key)
	if err != nil {
		s.loadFailures.Add(context.Background(), 1)
		s.log.Error().Err(err).Msg("Failed to read save document")
		return false
	}
	if !ok {
		return false
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		s.loadFailures.Add(context.Background(), 1)
		s.log.Warn().Err(err).Msg("Failed to parse save data, keeping defaults")
		return false
	}

	s.rec = Migrate(parsed)
	s.migrations.Add(context.Background(), 1)
	s.log.Info().Int("version", s.rec.Version).Msg("Save loaded")

	if err := s.Save(); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist migrated save")
	}
	return true
}

// Save serializes the in-memory record and writes it through to the backend.
func (s *Store) Save() error {
	data, err := json.Marshal(s.rec)
	if err != nil {
		return fmt.Errorf("failed to serialize save record: %w", err)
	}
	if err := s.backend.Put(s.key, data); err != nil {
		return fmt.Errorf("failed to write save document: %w", err)
	}
	s.writes.Add(context.Background(), 1)
	return nil
}

// HasSave reports whether a durable document exists, independent of whether
// it would parse.
func (s *Store) HasSave() bool {
	ok, err := s.backend.Has(s.key)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to check for save document")
		return false
	}
	return ok
}

// Reset replaces the record with fresh defaults, deletes the durable entry
// and writes the defaults back. A new game is itself a save, not the absence
// of one, so HasSave is true again immediately after Reset.
func (s *Store) Reset() error {
	s.rec = Defaults()
	if err := s.backend.Delete(s.key); err != nil {
		return fmt.Errorf("failed to delete save document: %w", err)
	}
	return s.Save()
}
