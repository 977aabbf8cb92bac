package reconciler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/keel/internal/adapters/conda"
	"go.trai.ch/keel/internal/core/domain"
)

// FindDeviations compares the environment at prefix against the spec.
// The dominant fast path is a freshness cache hit, which skips the
// installed-package scan entirely.
func (m *DefaultManager) FindDeviations(ctx context.Context, prefix string, spec *domain.EnvSpec) (*domain.EnvironmentDeviations, error) {
	// An enabled lock set that doesn't cover this platform means we
	// have no package list to reconcile against. Nothing else matters.
	lockSet := spec.LockSet()
	if lockSet != nil && lockSet.Enabled() && !lockSet.SupportsCurrentPlatform() {
		return &domain.EnvironmentDeviations{
			Summary: fmt.Sprintf("Env spec '%s' does not support current platform %s (it supports: %s)",
				spec.Name(), domain.CurrentPlatform(), strings.Join(lockSet.Platforms(), ", ")),
			Broken:    true,
			Unfixable: true,
		}, nil
	}

	if !conda.HasMetaDir(prefix) {
		return &domain.EnvironmentDeviations{
			Summary:            fmt.Sprintf("'%s' doesn't look like it contains a Conda environment yet.", prefix),
			MissingPackages:    spec.CondaPackageNamesForCreate(),
			MissingPipPackages: spec.PipPackageNames(),
			Broken:             true,
		}, nil
	}

	if timestampFresh(prefix, spec) {
		return &domain.EnvironmentDeviations{Summary: "OK"}, nil
	}

	return m.inspect(ctx, prefix, spec)
}

// inspect does the real comparison of installed state against the spec.
func (m *DefaultManager) inspect(ctx context.Context, prefix string, spec *domain.EnvSpec) (*domain.EnvironmentDeviations, error) {
	installed, err := conda.Installed(prefix)
	if err != nil {
		return nil, err
	}

	var missing, wrongVersion []string
	for _, specString := range spec.CondaPackagesForCreate() {
		parsed := domain.ParseSpec(specString)
		if parsed == nil {
			continue
		}
		pkg, ok := installed[parsed.Name]
		if !ok {
			missing = append(missing, parsed.Name)
			continue
		}
		if parsed.ExactVersion != "" && !versionMatches(pkg.Version, parsed.ExactVersion) {
			wrongVersion = append(wrongVersion, parsed.Name)
			continue
		}
		if parsed.ExactBuild != "" && !versionMatches(pkg.Build, parsed.ExactBuild) {
			wrongVersion = append(wrongVersion, parsed.Name)
		}
	}
	sort.Strings(missing)
	sort.Strings(wrongVersion)

	// listing pip packages forks a subprocess, so only pay for it when
	// the spec actually declares pip dependencies
	var missingPip []string
	if names := spec.PipPackageNames(); len(names) > 0 {
		pipInstalled, err := m.pip.Installed(ctx, prefix)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if _, ok := pipInstalled[strings.ToLower(name)]; !ok {
				missingPip = append(missingPip, name)
			}
		}
	}

	deviations := &domain.EnvironmentDeviations{
		MissingPackages:      missing,
		WrongVersionPackages: wrongVersion,
		MissingPipPackages:   missingPip,
		Broken:               true,
	}
	hasDeviations := len(missing) > 0 || len(wrongVersion) > 0 || len(missingPip) > 0
	if hasDeviations && !environmentWritable(prefix) {
		deviations.Unfixable = true
	}
	deviations.Summary = composeSummary(deviations)
	return deviations, nil
}

// versionMatches reports whether an installed version (or build)
// satisfies an exact requirement: equal, or a dotted extension of it,
// so a required "1.2" accepts an installed "1.2.3".
func versionMatches(installed, required string) bool {
	return installed == required || strings.HasPrefix(installed, required+".")
}

// environmentWritable probes the prefix with a real write rather than
// trusting permission bits, which lie on network filesystems.
func environmentWritable(prefix string) bool {
	probeDir := filepath.Join(prefix, "var", "cache", "keel")
	if err := os.MkdirAll(probeDir, 0o755); err != nil {
		return false
	}
	probe, err := os.CreateTemp(probeDir, ".write-probe-")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return true
}

// composeSummary renders the one-line deviation description.
func composeSummary(d *domain.EnvironmentDeviations) string {
	allMissing := append(append([]string{}, d.MissingPackages...), d.MissingPipPackages...)
	sort.Strings(allMissing)

	var summary string
	switch {
	case len(allMissing) > 0 && len(d.WrongVersionPackages) > 0:
		summary = fmt.Sprintf("Conda environment is missing packages: %s and has wrong versions of: %s",
			strings.Join(allMissing, ", "), strings.Join(d.WrongVersionPackages, ", "))
	case len(allMissing) > 0:
		summary = fmt.Sprintf("Conda environment is missing packages: %s", strings.Join(allMissing, ", "))
	case len(d.WrongVersionPackages) > 0:
		summary = fmt.Sprintf("Conda environment has wrong versions of: %s", strings.Join(d.WrongVersionPackages, ", "))
	default:
		summary = "Conda environment needs to be marked as up-to-date"
	}
	if d.Unfixable {
		summary += " and the environment is read-only"
	}
	return summary
}
