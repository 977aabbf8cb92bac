package domain

import (
	"runtime"
	"sort"
	"strings"
)

// Platform groups. A group names a set of concrete platforms so that a
// package list shared by several platforms only has to be written once.
const (
	GroupAll   = "all"
	GroupUnix  = "unix"
	GroupLinux = "linux"
	GroupOSX   = "osx"
	GroupWin   = "win"
)

// platformGroupOrder is the canonical precedence of group keys, most
// general first. It doubles as the layering order for lock-set lookups.
var platformGroupOrder = []string{GroupAll, GroupUnix, GroupLinux, GroupOSX, GroupWin}

// KnownPlatforms is the registry of platforms the external tool has
// package subdirs for, in canonical order.
var KnownPlatforms = []string{
	"linux-32",
	"linux-64",
	"linux-aarch64",
	"linux-armv6l",
	"linux-armv7l",
	"linux-ppc64le",
	"osx-64",
	"osx-arm64",
	"win-32",
	"win-64",
}

// DefaultPlatforms are the platforms locked by default when a project
// doesn't list any.
var DefaultPlatforms = []string{"linux-64", "osx-64", "win-64"}

var knownPlatformIndex = func() map[string]int {
	m := make(map[string]int, len(KnownPlatforms))
	for i, p := range KnownPlatforms {
		m[p] = i
	}
	return m
}()

var platformGroupIndex = func() map[string]int {
	m := make(map[string]int, len(platformGroupOrder))
	for i, g := range platformGroupOrder {
		m[g] = i
	}
	return m
}()

// IsPlatformGroup reports whether s is a group key rather than a
// concrete platform.
func IsPlatformGroup(s string) bool {
	_, ok := platformGroupIndex[s]
	return ok
}

// IsKnownPlatform reports whether platform is in the registry.
func IsKnownPlatform(platform string) bool {
	_, ok := knownPlatformIndex[platform]
	return ok
}

// SplitPlatform splits a platform id of the form "<os>-<bits>" on its
// last hyphen; os names may themselves contain hyphens. The second
// return is false when there's no hyphen at all, which makes the id
// syntactically invalid.
func SplitPlatform(platform string) (osName, bits string, ok bool) {
	i := strings.LastIndex(platform, "-")
	if i < 0 {
		return "", "", false
	}
	return platform[:i], platform[i+1:], true
}

// PlatformOSName returns the os-family portion of a platform id, or ""
// when the id is invalid.
func PlatformOSName(platform string) string {
	osName, _, ok := SplitPlatform(platform)
	if !ok {
		return ""
	}
	return osName
}

// PlatformIsUnix reports whether a platform's os family belongs to the
// unix supergroup.
func PlatformIsUnix(platform string) bool {
	osName := PlatformOSName(platform)
	return osName == GroupLinux || osName == GroupOSX
}

// CurrentPlatform returns the platform id for the running process,
// using the external tool's naming convention.
func CurrentPlatform() string {
	osName := map[string]string{
		"linux":   GroupLinux,
		"darwin":  GroupOSX,
		"windows": GroupWin,
	}[runtime.GOOS]
	if osName == "" {
		osName = runtime.GOOS
	}

	bits := runtime.GOARCH
	switch runtime.GOARCH {
	case "amd64":
		bits = "64"
	case "386":
		bits = "32"
	case "arm64":
		if osName == GroupLinux {
			bits = "aarch64"
		}
	case "arm":
		bits = "armv7l"
	}
	return osName + "-" + bits
}

// platformSortKey orders group keys first (in group precedence), then
// registry platforms (in registry order), then anything else
// alphabetically. The triple compares lexicographically.
func platformSortKey(platform string) (int, int, string) {
	if i, ok := platformGroupIndex[platform]; ok {
		return 0, i, ""
	}
	if i, ok := knownPlatformIndex[platform]; ok {
		return 1, i, ""
	}
	return 2, 0, platform
}

// SortPlatformList returns a new list in canonical order: groups, then
// registry platforms, then unknown platforms alphabetically. The sort
// is total, so it is idempotent and permutation-independent.
func SortPlatformList(platforms []string) []string {
	sorted := make([]string, len(platforms))
	copy(sorted, platforms)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, gi, si := platformSortKey(sorted[i])
		tj, gj, sj := platformSortKey(sorted[j])
		if ti != tj {
			return ti < tj
		}
		if gi != gj {
			return gi < gj
		}
		return si < sj
	})
	return sorted
}

// PlatformValidation is the result of ValidatePlatforms.
type PlatformValidation struct {
	// Platforms holds every syntactically valid platform (known or not),
	// deduplicated and canonically sorted.
	Platforms []string

	// Unknown is the subset of Platforms not in the registry.
	Unknown []string

	// Invalid holds entries with no hyphen at all.
	Invalid []string
}

// ValidatePlatforms classifies a raw platform list. It never fails;
// malformed entries are reported, not rejected.
func ValidatePlatforms(platforms []string) PlatformValidation {
	var v PlatformValidation
	seen := make(map[string]bool)
	for _, p := range platforms {
		if seen[p] {
			continue
		}
		seen[p] = true
		if _, _, ok := SplitPlatform(p); !ok {
			v.Invalid = append(v.Invalid, p)
			continue
		}
		v.Platforms = append(v.Platforms, p)
		if !IsKnownPlatform(p) {
			v.Unknown = append(v.Unknown, p)
		}
	}
	v.Platforms = SortPlatformList(v.Platforms)
	v.Unknown = SortPlatformList(v.Unknown)
	sort.Strings(v.Invalid)
	return v
}
