package state

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/larsclaussen/kiln/internal/core/ports"
)

const NodeID graft.ID = "adapter.stage_record_store"

func init() {
	graft.Register(graft.Node[ports.StageRecordStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StageRecordStore, error) {
			return NewStore(DefaultPath)
		},
	})
}
