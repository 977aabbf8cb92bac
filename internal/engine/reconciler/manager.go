// Package reconciler implements the environment reconciliation engine:
// resolving env specs into lock sets, detecting deviations of an
// installed prefix, and repairing them through the external tools.
package reconciler

import (
	"context"

	"go.trai.ch/keel/internal/adapters/conda"
	"go.trai.ch/keel/internal/adapters/pip"
	"go.trai.ch/keel/internal/core/ports"
)

// DefaultManager is the one implementation of
// ports.EnvironmentManager, driving conda and pip as subprocesses.
type DefaultManager struct {
	conda  *conda.CLI
	pip    *pip.CLI
	runner ports.ProcessRunner
	logger ports.Logger
}

var _ ports.EnvironmentManager = (*DefaultManager)(nil)

// New creates a DefaultManager.
func New(condaCLI *conda.CLI, pipCLI *pip.CLI, runner ports.ProcessRunner, logger ports.Logger) *DefaultManager {
	return &DefaultManager{
		conda:  condaCLI,
		pip:    pipCLI,
		runner: runner,
		logger: logger,
	}
}

// RemovePackages removes the named packages from the environment.
func (m *DefaultManager) RemovePackages(ctx context.Context, prefix string, packages []string) error {
	return m.conda.Remove(ctx, prefix, packages)
}

// ResolveEnvPrefix maps an environment name to its prefix through the
// tool's registry. Names the tool doesn't know fall back to being
// treated as paths.
func (m *DefaultManager) ResolveEnvPrefix(ctx context.Context, nameOrPrefix string) (string, error) {
	resolved, err := m.conda.ResolveEnvToPrefix(ctx, nameOrPrefix)
	if err != nil {
		return "", err
	}
	if resolved == "" {
		return nameOrPrefix, nil
	}
	return resolved, nil
}
