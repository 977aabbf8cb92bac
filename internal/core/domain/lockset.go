package domain

import (
	"fmt"
	"slices"
	"strings"
)

// PipGroup is the reserved group key holding locked pip specs. It is
// looked up directly, never layered.
const PipGroup = "pip"

// LockSet is an immutable resolved set of fully-pinned package specs,
// partitioned by platform group so that lists shared across platforms
// are stored once. A lock set is replaced wholesale on every re-lock,
// never mutated, except for the env spec hash, which is attached
// exactly once when the owning spec's identity becomes known.
type LockSet struct {
	packagesByGroup map[string][]string
	platforms       []string
	enabled         bool
	envSpecHash     string
	hashSet         bool
	missing         bool
}

// NewLockSet builds a lock set from per-group package spec lists and
// the platform list it was resolved for. Keys of packagesByGroup must
// be known groups, concrete platforms, or PipGroup.
func NewLockSet(packagesByGroup map[string][]string, platforms []string, enabled bool) *LockSet {
	byGroup := make(map[string][]string, len(packagesByGroup))
	for group, specs := range packagesByGroup {
		byGroup[group] = slices.Clone(specs)
	}
	return &LockSet{
		packagesByGroup: byGroup,
		platforms:       SortPlatformList(platforms),
		enabled:         enabled,
	}
}

// NewMissingLockSet returns the lock set of a spec that has never been
// resolved. Distinct from a lock set that resolved to nothing.
func NewMissingLockSet() *LockSet {
	return &LockSet{
		packagesByGroup: map[string][]string{},
		missing:         true,
	}
}

// Enabled reports whether locking is turned on for the owning spec.
func (l *LockSet) Enabled() bool { return l.enabled }

// Missing reports whether this spec was never resolved.
func (l *LockSet) Missing() bool { return l.missing }

// Platforms returns the canonically sorted platform list the lock set
// was resolved for.
func (l *LockSet) Platforms() []string { return slices.Clone(l.platforms) }

// EnvSpecHash returns the hash of the spec this lock set was computed
// for, or "" if not yet attached.
func (l *LockSet) EnvSpecHash() string { return l.envSpecHash }

// SetEnvSpecHash attaches the owning spec's hash. The hash is part of
// the lock set's identity and may be set exactly once; a second call
// with a different value is a programming error.
func (l *LockSet) SetEnvSpecHash(hash string) {
	if l.hashSet && l.envSpecHash != hash {
		panic(fmt.Sprintf("env spec hash already set to %q, refusing %q", l.envSpecHash, hash))
	}
	l.envSpecHash = hash
	l.hashSet = true
}

// PackagesByGroup returns a copy of the raw per-group spec lists, for
// persistence. Keys are in no particular order; callers sort with
// SortPlatformList.
func (l *LockSet) PackagesByGroup() map[string][]string {
	byGroup := make(map[string][]string, len(l.packagesByGroup))
	for group, specs := range l.packagesByGroup {
		byGroup[group] = slices.Clone(specs)
	}
	return byGroup
}

// GroupKeys returns the group keys in canonical persisted order, with
// the pip group last.
func (l *LockSet) GroupKeys() []string {
	keys := make([]string, 0, len(l.packagesByGroup))
	hasPip := false
	for group := range l.packagesByGroup {
		if group == PipGroup {
			hasPip = true
			continue
		}
		keys = append(keys, group)
	}
	keys = SortPlatformList(keys)
	if hasPip {
		keys = append(keys, PipGroup)
	}
	return keys
}

// SupportsPlatform reports whether this lock set carries package specs
// usable on the given platform.
func (l *LockSet) SupportsPlatform(platform string) bool {
	if l.missing || !slices.Contains(l.platforms, platform) {
		return false
	}
	return len(l.PackageSpecsForPlatform(platform)) > 0
}

// SupportsCurrentPlatform reports whether the running process's
// platform is covered.
func (l *LockSet) SupportsCurrentPlatform() bool {
	return l.SupportsPlatform(CurrentPlatform())
}

// PackageSpecsForPlatform merges the group lists that apply to one
// concrete platform, most general first: all, then unix (for unix-like
// platforms), then the os family, then the exact platform id. A more
// specific layer overrides an earlier entry by package name while
// keeping its position. Most packages can therefore live in "all" with
// platform-specific pins appearing once, in the most specific group.
func (l *LockSet) PackageSpecsForPlatform(platform string) []string {
	layers := []string{GroupAll}
	if PlatformIsUnix(platform) {
		layers = append(layers, GroupUnix)
	}
	if osName := PlatformOSName(platform); osName != "" {
		layers = append(layers, osName)
	}
	layers = append(layers, platform)

	var combined []string
	for _, layer := range layers {
		combined = CombineKeepingLastDuplicate(combined, l.packagesByGroup[layer], SpecName)
	}
	return combined
}

// PackageSpecsForCurrentPlatform is PackageSpecsForPlatform for the
// running process's platform.
func (l *LockSet) PackageSpecsForCurrentPlatform() []string {
	return l.PackageSpecsForPlatform(CurrentPlatform())
}

// PipPackageSpecs returns the locked pip specs. Pip lists are not
// layered.
func (l *LockSet) PipPackageSpecs() []string {
	return slices.Clone(l.packagesByGroup[PipGroup])
}

// EquivalentTo reports whether two lock sets describe the same locked
// state. The env spec hash is deliberately ignored: it records which
// spec produced the set, not what the set contains.
func (l *LockSet) EquivalentTo(other *LockSet) bool {
	if other == nil {
		return false
	}
	if l.enabled != other.enabled || l.missing != other.missing {
		return false
	}
	if !slices.Equal(l.platforms, other.platforms) {
		return false
	}
	if len(l.packagesByGroup) != len(other.packagesByGroup) {
		return false
	}
	for group, specs := range l.packagesByGroup {
		if !slices.Equal(specs, other.packagesByGroup[group]) {
			return false
		}
	}
	return true
}

// Diff renders a line-per-entry comparison against an older lock set:
// removed specs prefixed "- " and added specs "+ ", grouped under
// their group key in canonical order. Returns "" when nothing differs.
func (l *LockSet) Diff(old *LockSet) string {
	groups := make(map[string]bool)
	for g := range l.packagesByGroup {
		groups[g] = true
	}
	for g := range old.packagesByGroup {
		groups[g] = true
	}
	keys := make([]string, 0, len(groups))
	hasPip := false
	for g := range groups {
		if g == PipGroup {
			hasPip = true
			continue
		}
		keys = append(keys, g)
	}
	keys = SortPlatformList(keys)
	if hasPip {
		keys = append(keys, PipGroup)
	}

	var lines []string
	for _, group := range keys {
		section := diffSpecLists(old.packagesByGroup[group], l.packagesByGroup[group])
		if len(section) == 0 {
			continue
		}
		lines = append(lines, group+":")
		for _, line := range section {
			lines = append(lines, "  "+line)
		}
	}
	if !slices.Equal(l.platforms, old.platforms) {
		lines = append(lines, "platforms:")
		lines = append(lines, prefixLines(diffStringSets(old.platforms, l.platforms), "  ")...)
	}
	return strings.Join(lines, "\n")
}

// diffSpecLists compares two ordered spec lists and emits +/- lines for
// entries only on one side. Unchanged entries are omitted to keep diffs
// human-scannable.
func diffSpecLists(old, new []string) []string {
	return diffStringSets(old, new)
}

func diffStringSets(old, new []string) []string {
	oldSet := make(map[string]bool, len(old))
	for _, s := range old {
		oldSet[s] = true
	}
	newSet := make(map[string]bool, len(new))
	for _, s := range new {
		newSet[s] = true
	}

	var lines []string
	for _, s := range old {
		if !newSet[s] {
			lines = append(lines, "- "+s)
		}
	}
	for _, s := range new {
		if !oldSet[s] {
			lines = append(lines, "+ "+s)
		}
	}
	return lines
}

func prefixLines(lines []string, prefix string) []string {
	prefixed := make([]string, len(lines))
	for i, line := range lines {
		prefixed[i] = prefix + line
	}
	return prefixed
}
