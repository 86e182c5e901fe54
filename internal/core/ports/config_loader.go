// Package ports defines the core interfaces for the application.
package ports

import "github.com/larsclaussen/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the provisioning recipe.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the recipe at the given path and returns the stage pipeline.
	Load(path string) (*domain.Pipeline, error)
}
