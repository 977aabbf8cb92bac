package reconciler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/keel/internal/adapters/conda"
	"go.trai.ch/keel/internal/adapters/logger"
	"go.trai.ch/keel/internal/adapters/pip"
	"go.trai.ch/keel/internal/adapters/runner"
	"go.trai.ch/keel/internal/core/ports"
)

// NodeID is the unique identifier for the environment manager node.
const NodeID graft.ID = "engine.reconciler"

func init() {
	graft.Register(graft.Node[ports.EnvironmentManager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{conda.NodeID, pip.NodeID, runner.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.EnvironmentManager, error) {
			condaCLI, err := graft.Dep[*conda.CLI](ctx)
			if err != nil {
				return nil, err
			}
			pipCLI, err := graft.Dep[*pip.CLI](ctx)
			if err != nil {
				return nil, err
			}
			run, err := graft.Dep[ports.ProcessRunner](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(condaCLI, pipCLI, run, log), nil
		},
	})
}
