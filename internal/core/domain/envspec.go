package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// EnvSpec is a named, declarative description of an environment: the
// package constraints to satisfy, the channels to satisfy them from,
// and the platforms the environment must be resolvable for. Specs are
// immutable per observation and replaced wholesale on edit.
//
// Package lists may contain unparsable strings; that is surfaced as a
// validation problem by the configuration layer, not rejected here.
type EnvSpec struct {
	name          string
	condaPackages []string
	pipPackages   []string
	channels      []string
	platforms     []string
	lockSet       *LockSet

	condaSpecsForCreateByName map[string]string
	pipSpecsByName            map[string]string
	hash                      string
	lockedHash                string
}

// NewEnvSpec constructs an env spec. Platforms are stored in canonical
// order. lockSet may be nil, meaning "no lock state known yet".
func NewEnvSpec(name string, condaPackages, channels, pipPackages, platforms []string, lockSet *LockSet) *EnvSpec {
	s := &EnvSpec{
		name:          name,
		condaPackages: slices.Clone(condaPackages),
		pipPackages:   slices.Clone(pipPackages),
		channels:      slices.Clone(channels),
		platforms:     SortPlatformList(platforms),
		lockSet:       lockSet,
	}

	s.condaSpecsForCreateByName = make(map[string]string)
	for _, spec := range s.CondaPackagesForCreate() {
		// invalid specs are skipped quietly; they fail with a clear
		// message at validation time, not here
		if parsed := ParseSpec(spec); parsed != nil {
			s.condaSpecsForCreateByName[parsed.Name] = spec
		}
	}

	s.pipSpecsByName = make(map[string]string)
	for _, spec := range s.pipPackages {
		if parsed := ParsePipSpec(spec); parsed != nil {
			s.pipSpecsByName[parsed.Name] = spec
		}
	}

	return s
}

// Name returns the spec's name.
func (s *EnvSpec) Name() string { return s.name }

// CondaPackages returns the declared conda package constraints.
func (s *EnvSpec) CondaPackages() []string { return slices.Clone(s.condaPackages) }

// PipPackages returns the declared pip package constraints.
func (s *EnvSpec) PipPackages() []string { return slices.Clone(s.pipPackages) }

// Channels returns the channel list, in declaration order.
func (s *EnvSpec) Channels() []string { return slices.Clone(s.channels) }

// Platforms returns the canonically sorted target platform list.
func (s *EnvSpec) Platforms() []string { return slices.Clone(s.platforms) }

// LockSet returns the lock state bound to this spec, or nil.
func (s *EnvSpec) LockSet() *LockSet { return s.lockSet }

// CondaPackagesForCreate returns the package specs that would actually
// be handed to the external tool: the locked pins when an enabled lock
// set covers the current platform, the declared constraints otherwise.
func (s *EnvSpec) CondaPackagesForCreate() []string {
	if s.lockSet != nil && s.lockSet.Enabled() && s.lockSet.SupportsCurrentPlatform() {
		return s.lockSet.PackageSpecsForCurrentPlatform()
	}
	return slices.Clone(s.condaPackages)
}

// CondaPackageNamesForCreate returns the parsed names of
// CondaPackagesForCreate, sorted.
func (s *EnvSpec) CondaPackageNamesForCreate() []string {
	names := make([]string, 0, len(s.condaSpecsForCreateByName))
	for name := range s.condaSpecsForCreateByName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PipPackageNames returns the parsed pip package names, sorted.
func (s *EnvSpec) PipPackageNames() []string {
	names := make([]string, 0, len(s.pipSpecsByName))
	for name := range s.pipSpecsByName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SpecsForCondaPackageNames maps package names back to their full
// constraint strings, dropping names the spec doesn't know.
func (s *EnvSpec) SpecsForCondaPackageNames(names []string) []string {
	return specsForNames(names, s.condaSpecsForCreateByName)
}

// SpecsForPipPackageNames maps pip package names back to their full
// constraint strings, dropping names the spec doesn't know.
func (s *EnvSpec) SpecsForPipPackageNames(names []string) []string {
	return specsForNames(names, s.pipSpecsByName)
}

func specsForNames(names []string, byName map[string]string) []string {
	specs := make([]string, 0, len(names))
	for _, name := range names {
		if spec, ok := byName[name]; ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Hash returns a hash of the spec's logical requirements: packages,
// pip packages, channels and platforms, in order. Changing any of them
// (including reordering) changes the hash, which is what invalidates a
// lock set and the freshness cache.
func (s *EnvSpec) Hash() string {
	if s.hash == "" {
		s.hash = hashStrings(s.condaPackages, s.pipPackages, s.channels, s.platforms)
	}
	return s.hash
}

// LockedHash returns a hash of what would be handed to the external
// tool for a create: the effective conda specs, pip specs and channels.
// Platform-independent, unlike Hash.
func (s *EnvSpec) LockedHash() string {
	if s.lockedHash == "" {
		s.lockedHash = hashStrings(s.CondaPackagesForCreate(), s.pipPackages, s.channels, nil)
	}
	return s.lockedHash
}

// Diff renders a +/- comparison of this spec's requirements against an
// older revision.
func (s *EnvSpec) Diff(old *EnvSpec) string {
	var lines []string
	if section := diffStringSets(old.channels, s.channels); len(section) > 0 {
		lines = append(lines, "channels:")
		lines = append(lines, prefixLines(section, "  ")...)
	}
	lines = append(lines, diffStringSets(old.condaPackages, s.condaPackages)...)
	if section := diffStringSets(old.pipPackages, s.pipPackages); len(section) > 0 {
		lines = append(lines, "pip:")
		lines = append(lines, prefixLines(section, "  ")...)
	}
	return strings.Join(lines, "\n")
}

// WithLockSet returns a copy of the spec observing a new lock state.
func (s *EnvSpec) WithLockSet(lockSet *LockSet) *EnvSpec {
	return NewEnvSpec(s.name, s.condaPackages, s.channels, s.pipPackages, s.platforms, lockSet)
}

func hashStrings(lists ...[]string) string {
	hasher := xxhash.New()
	for _, list := range lists {
		for _, item := range list {
			_, _ = hasher.WriteString(item)
			_, _ = hasher.Write([]byte{0})
		}
		_, _ = hasher.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}
