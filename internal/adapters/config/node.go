package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/keel/internal/adapters/logger"
	"go.trai.ch/keel/internal/core/ports"
)

// LoaderNodeID is the unique identifier for the project loader node.
const LoaderNodeID graft.ID = "adapter.project_loader"

// LockStoreNodeID is the unique identifier for the lock store node.
const LockStoreNodeID graft.ID = "adapter.lock_store"

func init() {
	graft.Register(graft.Node[ports.ProjectLoader]{
		ID:        LoaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ProjectLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})

	graft.Register(graft.Node[ports.LockStore]{
		ID:        LockStoreNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LockStore, error) {
			return NewLockStore(), nil
		},
	})
}
