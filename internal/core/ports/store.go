package ports

import "github.com/larsclaussen/kiln/internal/core/domain"

// StageRecordStore defines the interface for persisting stage records
// between runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StageRecordStore interface {
	// Get retrieves the record for a given cache key.
	// Returns nil, nil if not found.
	Get(cacheKey string) (*domain.StageRecord, error)

	// Put stores the record.
	Put(record domain.StageRecord) error

	// Prune removes all records.
	Prune() error
}
