package conda

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/keel/internal/adapters/runner"
	"go.trai.ch/keel/internal/adapters/telemetry/progrock"
	"go.trai.ch/keel/internal/core/ports"
)

// NodeID is the unique identifier for the conda CLI adapter node.
const NodeID graft.ID = "adapter.conda"

func init() {
	graft.Register(graft.Node[*CLI]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{runner.NodeID, progrock.NodeID},
		Run: func(ctx context.Context) (*CLI, error) {
			run, err := graft.Dep[ports.ProcessRunner](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			return New(run, tel), nil
		},
	})
}
