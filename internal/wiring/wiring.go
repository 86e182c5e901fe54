// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/larsclaussen/kiln/internal/adapters/config"
	_ "github.com/larsclaussen/kiln/internal/adapters/docker"
	_ "github.com/larsclaussen/kiln/internal/adapters/fs"
	_ "github.com/larsclaussen/kiln/internal/adapters/git"
	_ "github.com/larsclaussen/kiln/internal/adapters/logger"
	_ "github.com/larsclaussen/kiln/internal/adapters/state"
	_ "github.com/larsclaussen/kiln/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "github.com/larsclaussen/kiln/internal/app"
	_ "github.com/larsclaussen/kiln/internal/engine/runner"
)
