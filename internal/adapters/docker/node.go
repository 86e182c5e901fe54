package docker

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/larsclaussen/kiln/internal/adapters/fs"
	"github.com/larsclaussen/kiln/internal/core/ports"
)

const NodeID graft.ID = "adapter.engine"

func init() {
	graft.Register(graft.Node[ports.Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID},
		Run: func(ctx context.Context) (ports.Engine, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewEngine(walker)
		},
	})
}
