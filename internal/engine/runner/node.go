package runner

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/larsclaussen/kiln/internal/adapters/docker"
	"github.com/larsclaussen/kiln/internal/adapters/fs"
	"github.com/larsclaussen/kiln/internal/adapters/state"
	"github.com/larsclaussen/kiln/internal/adapters/telemetry"
	"github.com/larsclaussen/kiln/internal/core/ports"
)

const NodeID graft.ID = "engine.runner"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{docker.NodeID, fs.HasherNodeID, state.NodeID, telemetry.NodeID},
		Run: func(ctx context.Context) (*Runner, error) {
			engine, err := graft.Dep[ports.Engine](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.StageRecordStore](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(engine, hasher, store, tel), nil
		},
	})
}
