package app

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/larsclaussen/kiln/internal/adapters/config"
	"github.com/larsclaussen/kiln/internal/adapters/git"
	"github.com/larsclaussen/kiln/internal/adapters/logger"
	"github.com/larsclaussen/kiln/internal/adapters/state"
	"github.com/larsclaussen/kiln/internal/adapters/telemetry"
	"github.com/larsclaussen/kiln/internal/core/ports"
	"github.com/larsclaussen/kiln/internal/engine/runner"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			runner.NodeID,
			git.NodeID,
			state.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	run, err := graft.Dep[*runner.Runner](ctx)
	if err != nil {
		return nil, err
	}

	fetcher, err := graft.Dep[ports.SourceFetcher](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.StageRecordStore](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, run, fetcher, store, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       application,
		Logger:    log,
		Telemetry: tel,
	}, nil
}
