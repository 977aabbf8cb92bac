package app

import (
	"go.trai.ch/keel/internal/core/ports"
)

// Components bundles the resolved application graph for the CLI entry
// point: the app itself plus the ports it was wired with, so commands
// and tests can reach them without re-resolving nodes.
type Components struct {
	App       *App
	Logger    ports.Logger
	Loader    ports.ProjectLoader
	LockStore ports.LockStore
	Manager   ports.EnvironmentManager
}
