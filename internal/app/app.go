// Package app implements the application layer for keel.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

// App ties the project file layer to the reconciliation engine.
type App struct {
	loader    ports.ProjectLoader
	lockStore ports.LockStore
	manager   ports.EnvironmentManager
	logger    ports.Logger
}

// New creates a new App instance.
func New(loader ports.ProjectLoader, lockStore ports.LockStore, manager ports.EnvironmentManager, logger ports.Logger) *App {
	return &App{
		loader:    loader,
		lockStore: lockStore,
		manager:   manager,
		logger:    logger,
	}
}

// EnvPrefix returns the default environment prefix for a spec: the
// envs/<name> directory inside the project.
func EnvPrefix(dir string, spec *domain.EnvSpec) string {
	return filepath.Join(dir, "envs", spec.Name())
}

// resolvePrefix turns the user-facing prefix argument into a concrete
// path: empty means the project's own envs/<spec> directory, anything
// else may be a path or an environment name known to the tool.
func (a *App) resolvePrefix(ctx context.Context, dir string, spec *domain.EnvSpec, prefix string) (string, error) {
	if prefix == "" {
		return EnvPrefix(dir, spec), nil
	}
	resolved, err := a.manager.ResolveEnvPrefix(ctx, prefix)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve environment prefix")
	}
	return resolved, nil
}

// loadSpec loads the project at dir and picks the named env spec,
// falling back to the project default when name is empty. Validation
// problems are surfaced as warnings; they only fail when the broken
// spec entry is actually needed.
func (a *App) loadSpec(dir, specName string) (*domain.Project, *domain.EnvSpec, error) {
	project, err := a.loader.Load(dir)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load project")
	}
	for _, problem := range project.Problems {
		a.logger.Warn(problem)
	}
	spec, ok := project.EnvSpec(specName)
	if !ok {
		return nil, nil, zerr.With(zerr.New("env spec not found"), "env_spec", specName)
	}
	return project, spec, nil
}

// Lock resolves the named env spec for all of its platforms and
// persists the resulting lock set, keeping other specs' lock state
// untouched.
func (a *App) Lock(ctx context.Context, dir, specName string) error {
	project, spec, err := a.loadSpec(dir, specName)
	if err != nil {
		return err
	}

	resolved, err := a.manager.ResolveDependencies(ctx, spec.CondaPackages(), spec.Channels(), spec.Platforms())
	if err != nil {
		return zerr.Wrap(err, "failed to resolve dependencies")
	}

	byGroup := resolved.PackagesByGroup()
	if pip := spec.PipPackages(); len(pip) > 0 {
		byGroup[domain.PipGroup] = pip
	}
	locked := domain.NewLockSet(byGroup, resolved.Platforms(), true)
	locked.SetEnvSpecHash(spec.Hash())

	if old := spec.LockSet(); old != nil && !old.Missing() {
		if locked.EquivalentTo(old) {
			a.logger.Info(fmt.Sprintf("Env spec '%s' is already locked and up to date", spec.Name()))
		} else {
			a.logger.Info(fmt.Sprintf("Updated lock for env spec '%s':\n%s", spec.Name(), locked.Diff(old)))
		}
	} else {
		a.logger.Info(fmt.Sprintf("Locked env spec '%s'", spec.Name()))
	}

	lockSets := make(map[string]*domain.LockSet)
	for name, other := range project.EnvSpecs {
		if existing := other.LockSet(); existing != nil && !existing.Missing() {
			lockSets[name] = existing
		}
	}
	lockSets[spec.Name()] = locked

	if err := a.lockStore.Save(dir, lockSets); err != nil {
		return zerr.Wrap(err, "failed to save lock file")
	}
	return nil
}

// Check reports how the spec's environment deviates from the spec
// without changing anything.
func (a *App) Check(ctx context.Context, dir, specName, prefix string) (*domain.EnvironmentDeviations, error) {
	_, spec, err := a.loadSpec(dir, specName)
	if err != nil {
		return nil, err
	}
	prefix, err = a.resolvePrefix(ctx, dir, spec, prefix)
	if err != nil {
		return nil, err
	}
	deviations, err := a.manager.FindDeviations(ctx, prefix, spec)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to check environment")
	}
	return deviations, nil
}

// Prepare reconciles the spec's environment, creating it from scratch
// when it doesn't exist yet.
func (a *App) Prepare(ctx context.Context, dir, specName, prefix string) error {
	_, spec, err := a.loadSpec(dir, specName)
	if err != nil {
		return err
	}
	prefix, err = a.resolvePrefix(ctx, dir, spec, prefix)
	if err != nil {
		return err
	}
	deviations, err := a.manager.FindDeviations(ctx, prefix, spec)
	if err != nil {
		return zerr.Wrap(err, "failed to check environment")
	}
	if deviations.OK() {
		a.logger.Info(fmt.Sprintf("Environment '%s' is already up to date", prefix))
		return nil
	}
	a.logger.Info(deviations.Summary)
	if err := a.manager.FixDeviations(ctx, prefix, spec, deviations, true); err != nil {
		return zerr.Wrap(err, "failed to prepare environment")
	}
	a.logger.Info(fmt.Sprintf("Environment '%s' is ready", prefix))
	return nil
}

// RemovePackages removes packages from the spec's environment. The
// spec itself is not edited; the next check reports them missing.
func (a *App) RemovePackages(ctx context.Context, dir, specName, prefix string, packages []string) error {
	_, spec, err := a.loadSpec(dir, specName)
	if err != nil {
		return err
	}
	prefix, err = a.resolvePrefix(ctx, dir, spec, prefix)
	if err != nil {
		return err
	}
	if err := a.manager.RemovePackages(ctx, prefix, packages); err != nil {
		return zerr.Wrap(err, "failed to remove packages")
	}
	return nil
}
