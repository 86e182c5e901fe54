// Package state persists stage records between runs using a flat JSON file.
package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/larsclaussen/kiln/internal/core/domain"
	"github.com/larsclaussen/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultPath is where the store lives relative to the project root.
const DefaultPath = ".kiln/state.json"

var _ ports.StageRecordStore = (*Store)(nil)

// Store implements ports.StageRecordStore using a flat JSON file keyed by
// cache key.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.StageRecord
}

// NewStore creates a new StageRecordStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.StageRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read stage record store")
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.Wrap(err, "failed to unmarshal stage record store")
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal stage record store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for stage record store")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write stage record store")
	}

	return nil
}

// Get retrieves the record for a given cache key. Returns nil, nil on a miss.
func (s *Store) Get(cacheKey string) (*domain.StageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.cache[cacheKey]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put stores the record.
func (s *Store) Put(record domain.StageRecord) error {
	s.mu.Lock()
	s.cache[record.CacheKey] = record
	s.mu.Unlock()

	return s.save()
}

// Prune removes all records and deletes the backing file.
func (s *Store) Prune() error {
	s.mu.Lock()
	s.cache = make(map[string]domain.StageRecord)
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, "failed to remove stage record store")
	}
	return nil
}
