package reconciler

import (
	"context"
	"os"
	"sort"
	"strings"

	"go.trai.ch/keel/internal/adapters/conda"
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

// FixDeviations repairs the environment at prefix so it matches the
// spec. deviations may be nil, in which case they are computed first.
// When create is false a missing environment fails instead of being
// built from scratch.
func (m *DefaultManager) FixDeviations(ctx context.Context, prefix string, spec *domain.EnvSpec, deviations *domain.EnvironmentDeviations, create bool) error {
	if deviations == nil {
		found, err := m.FindDeviations(ctx, prefix, spec)
		if err != nil {
			return err
		}
		deviations = found
	}

	lockSet := spec.LockSet()
	if lockSet != nil && lockSet.Enabled() && !lockSet.SupportsCurrentPlatform() {
		unsupported := domain.WithDetail(domain.ErrPlatformNotSupported, "env_spec", spec.Name())
		unsupported = zerr.With(unsupported, "platform", domain.CurrentPlatform())
		return zerr.With(unsupported, "supported", strings.Join(lockSet.Platforms(), ", "))
	}
	if deviations.Unfixable {
		unfixable := domain.WithDetail(domain.ErrUnfixableDeviations, "prefix", prefix)
		return zerr.With(unfixable, "summary", deviations.Summary)
	}
	if deviations.OK() {
		return nil
	}

	// an interrupted fix must not read as fresh on the next check
	removeTimestamp(prefix, spec)

	if _, err := os.Stat(conda.PackedMarkerFile(prefix)); err == nil {
		if m.unpack(ctx, prefix) {
			// a successfully unpacked environment already carries
			// everything it was packed with, pip packages included
			return writeTimestamp(prefix, spec)
		}
		// wrong architecture or unpack failure; only a clean rebuild
		// can recover
		if err := os.RemoveAll(prefix); err != nil {
			return zerr.Wrap(err, "failed to remove unusable packed environment")
		}
		create = true
		deviations = &domain.EnvironmentDeviations{
			MissingPackages:    spec.CondaPackageNamesForCreate(),
			MissingPipPackages: spec.PipPackageNames(),
			Broken:             true,
		}
	}

	if conda.HasMetaDir(prefix) {
		if err := m.installMissing(ctx, prefix, spec, deviations); err != nil {
			return err
		}
	} else {
		if !create {
			return domain.WithDetail(domain.ErrEnvironmentMissing, "prefix", prefix)
		}
		packageSpecs := spec.CondaPackagesForCreate()
		if len(packageSpecs) == 0 {
			// an empty env spec still needs an interpreter to be a
			// usable environment
			packageSpecs = []string{"python"}
		}
		if err := m.conda.Create(ctx, prefix, packageSpecs, spec.Channels()); err != nil {
			return err
		}
	}

	if len(deviations.MissingPipPackages) > 0 {
		pipSpecs := spec.SpecsForPipPackageNames(deviations.MissingPipPackages)
		if len(pipSpecs) > 0 {
			if err := m.pip.Install(ctx, prefix, pipSpecs); err != nil {
				return err
			}
		}
	}

	return writeTimestamp(prefix, spec)
}

// unpack runs the environment's own unpack entry point for a packed
// artifact whose recorded platform matches ours, removing the marker
// on success. Any mismatch or failure reports false so the caller can
// rebuild from scratch.
func (m *DefaultManager) unpack(ctx context.Context, prefix string) bool {
	marker := conda.PackedMarkerFile(prefix)
	data, err := os.ReadFile(marker) //nolint:gosec // fixed path inside the prefix
	if err != nil {
		return false
	}
	if recorded := strings.TrimSpace(string(data)); recorded != domain.CurrentPlatform() {
		m.logger.Info("environment was packed for " + recorded + ", rebuilding")
		return false
	}
	exe := conda.UnpackExecutable(prefix)
	if exe == "" {
		return false
	}
	if _, err := m.runner.Run(ctx, ports.RunRequest{Command: []string{exe}}); err != nil {
		m.logger.Warn("conda-unpack failed: " + err.Error())
		return false
	}
	_ = os.Remove(marker)
	return true
}

// installMissing installs the union of missing and wrong-version
// packages. Already-correct installed packages required by the spec
// are pinned for the duration of the install so the resolver can't
// drift them while fixing the others.
func (m *DefaultManager) installMissing(ctx context.Context, prefix string, spec *domain.EnvSpec, deviations *domain.EnvironmentDeviations) error {
	fixNames := make(map[string]bool)
	for _, name := range deviations.MissingPackages {
		fixNames[name] = true
	}
	for _, name := range deviations.WrongVersionPackages {
		fixNames[name] = true
	}
	names := make([]string, 0, len(fixNames))
	for name := range fixNames {
		names = append(names, name)
	}
	sort.Strings(names)

	packageSpecs := spec.SpecsForCondaPackageNames(names)
	if len(packageSpecs) == 0 {
		return nil
	}

	installed, err := conda.Installed(prefix)
	if err != nil {
		return err
	}
	var pinLines []string
	for _, required := range spec.CondaPackageNamesForCreate() {
		if fixNames[required] {
			continue
		}
		if pkg, ok := installed[required]; ok {
			pinLines = append(pinLines, pkg.Name+" =="+pkg.Version)
		}
	}

	pinFile := conda.PinnedFile(prefix)
	pinned := false
	if len(pinLines) > 0 {
		content := strings.Join(pinLines, "\n") + "\n"
		if err := os.WriteFile(pinFile, []byte(content), 0o644); err != nil { //nolint:gosec // consumed by the tool, not a secret
			return zerr.Wrap(err, "failed to write pin file")
		}
		pinned = true
	}

	installErr := m.conda.Install(ctx, prefix, packageSpecs, spec.Channels())
	if pinned {
		// the pin file must never outlive the install, but its cleanup
		// never masks an install failure
		if removeErr := os.Remove(pinFile); removeErr != nil && installErr == nil {
			installErr = zerr.Wrap(removeErr, "failed to remove pin file")
		}
	}
	return installErr
}
