package git

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/larsclaussen/kiln/internal/core/ports"
)

const NodeID graft.ID = "adapter.source_fetcher"

func init() {
	graft.Register(graft.Node[ports.SourceFetcher]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SourceFetcher, error) {
			return NewFetcher(), nil
		},
	})
}
