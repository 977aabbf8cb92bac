package ports

import "go.trai.ch/keel/internal/core/domain"

// ProjectLoader loads a project's configuration and lock state.
//
//go:generate go run go.uber.org/mock/mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type ProjectLoader interface {
	// Load reads the project config and lock file from dir, binding
	// each loaded lock set to its env spec. Unparsable package specs
	// and unknown platforms become Problems on the returned project.
	Load(dir string) (*domain.Project, error)
}

// LockStore persists resolved lock sets.
type LockStore interface {
	// Save writes the lock file for dir with the given lock sets, keyed
	// by env spec name, emitting platform-group keys in canonical order.
	Save(dir string, lockSets map[string]*domain.LockSet) error
}
