package domain

// EnvironmentDeviations describes how an installed environment differs
// from the env spec it is supposed to satisfy. A fresh value is built
// by every check and never mutated.
type EnvironmentDeviations struct {
	// Summary is a one-line human-readable description of the most
	// immediate problem.
	Summary string

	// MissingPackages are required conda package names absent from the
	// environment, sorted and deduplicated.
	MissingPackages []string

	// WrongVersionPackages are conda package names installed at a
	// version or build that doesn't satisfy the spec's exact pin.
	WrongVersionPackages []string

	// MissingPipPackages are required pip package names absent from the
	// environment.
	MissingPipPackages []string

	// WrongVersionPipPackages is carried for report shape stability but
	// is never populated: pip versions are not checked.
	WrongVersionPipPackages []string

	// Broken is true when the environment deviates for a reason beyond
	// individual packages (no metadata directory, stale freshness cache,
	// unusable lock set).
	Broken bool

	// Unfixable is true when reconciliation cannot repair the
	// environment (read-only prefix with real deviations, or no package
	// list for the current platform). Unfixable implies not OK.
	Unfixable bool
}

// OK reports whether no deviations were found: reconciliation would
// have nothing to do.
func (d *EnvironmentDeviations) OK() bool {
	return len(d.MissingPackages) == 0 &&
		len(d.WrongVersionPackages) == 0 &&
		len(d.MissingPipPackages) == 0 &&
		len(d.WrongVersionPipPackages) == 0 &&
		!d.Broken
}

// InstalledPackage is a read-only snapshot of one package in an
// environment, parsed from the metadata directory naming convention
// "<name>-<version>-<build>".
type InstalledPackage struct {
	Name    string
	Version string
	Build   string
}

// PinnedSpec renders the fully-pinned "name=version=build" spec string
// for this package.
func (p InstalledPackage) PinnedSpec() string {
	return p.Name + "=" + p.Version + "=" + p.Build
}
