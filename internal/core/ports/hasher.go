package ports

import "github.com/larsclaussen/kiln/internal/core/domain"

// Hasher defines the interface for computing stage cache keys.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeStageKey computes the cache key for a stage.
	//
	// The key is derived from the parent stage's key, the stage definition,
	// and the content of the stage's declared file inputs resolved against
	// root. Nothing else may influence it: that is what lets a source edit
	// leave the dependency stage cached.
	ComputeStageKey(stage *domain.Stage, parentKey string, root string) (string, error)
}
