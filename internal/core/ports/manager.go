// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/keel/internal/core/domain"
)

// EnvironmentManager is the environment reconciliation engine: it
// resolves env specs into lock sets, detects how an installed prefix
// deviates from a spec, and repairs those deviations by driving the
// external package tool.
//
// Implementations must be safe for concurrent use against different
// prefixes. Operations against the same prefix mutate its metadata
// directory and freshness cache in place, so callers provide mutual
// exclusion per prefix; it is not enforced here.
//
//go:generate go run go.uber.org/mock/mockgen -source=manager.go -destination=mocks/mock_manager.go -package=mocks
type EnvironmentManager interface {
	// ResolveDependencies runs the external tool's dry-run resolution
	// once per requested platform and factors the results into a lock
	// set. The current platform is resolved first so a universal
	// misconfiguration fails before the slow cross-platform round trips.
	ResolveDependencies(ctx context.Context, packageSpecs, channels, platforms []string) (*domain.LockSet, error)

	// FindDeviations compares the environment at prefix against the
	// spec. The prefix may not exist; that is a deviation, not an error.
	FindDeviations(ctx context.Context, prefix string, spec *domain.EnvSpec) (*domain.EnvironmentDeviations, error)

	// FixDeviations applies the minimal set of external-tool invocations
	// needed to make the environment match the spec. deviations may be
	// nil, in which case they are computed first. When create is false a
	// missing environment is an error rather than created from scratch.
	FixDeviations(ctx context.Context, prefix string, spec *domain.EnvSpec, deviations *domain.EnvironmentDeviations, create bool) error

	// RemovePackages removes the named packages from the environment.
	RemovePackages(ctx context.Context, prefix string, packages []string) error

	// ResolveEnvPrefix maps an environment name registered with the
	// external tool to its prefix path. Absolute paths pass through
	// untouched, and a name the tool doesn't know is taken as a
	// filesystem path.
	ResolveEnvPrefix(ctx context.Context, nameOrPrefix string) (string, error)
}
