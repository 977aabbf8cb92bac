package reconciler

import (
	"sort"

	"go.trai.ch/keel/internal/core/domain"
)

// extractCommon factors per-platform pinned package lists into shared
// groups, preferring the most general grouping available: per-OS-family
// groups first, then unix, then all. A factoring step is skipped when
// fewer than two platforms would share it or the intersection is empty.
// The point is a minimal, human-diffable persisted lock file.
func extractCommon(byPlatform map[string][]string) map[string][]string {
	sets := make(map[string]map[string]bool, len(byPlatform))
	for platform, specs := range byPlatform {
		set := make(map[string]bool, len(specs))
		for _, spec := range specs {
			set[spec] = true
		}
		sets[platform] = set
	}

	groups := make(map[string]map[string]bool)
	families := make(map[string][]string)
	for platform := range sets {
		if osName := domain.PlatformOSName(platform); osName != "" {
			families[osName] = append(families[osName], platform)
		}
	}

	// per-OS-family stage
	for osName, members := range families {
		if len(members) < 2 {
			continue
		}
		common := intersect(memberSets(sets, members))
		if len(common) == 0 {
			continue
		}
		groups[osName] = common
		removeFrom(sets, members, common)
	}

	// the unix stage needs at least two distinct unix families; within
	// one family the family group is already the more specific home
	unixFamilies := 0
	var unixPlatforms []string
	for _, platform := range sortedKeys(sets) {
		if domain.PlatformIsUnix(platform) {
			unixPlatforms = append(unixPlatforms, platform)
		}
	}
	for osName := range families {
		if osName == domain.GroupLinux || osName == domain.GroupOSX {
			unixFamilies++
		}
	}
	if unixFamilies >= 2 {
		common := intersect(effectiveSets(sets, groups, unixPlatforms, nil))
		if len(common) > 0 {
			groups[domain.GroupUnix] = common
			removeFrom(sets, unixPlatforms, common)
			removeFromGroups(groups, []string{domain.GroupLinux, domain.GroupOSX}, common)
		}
	}

	// "all" needs evidence from both sides of the unix/win divide, or
	// it would just restate a narrower group
	hasWin := len(families[domain.GroupWin]) > 0
	if hasWin && unixFamilies >= 1 {
		every := sortedKeys(sets)
		common := intersect(effectiveSets(sets, groups, every, every))
		if len(common) > 0 {
			groups[domain.GroupAll] = common
			removeFrom(sets, every, common)
			removeFromGroups(groups, []string{domain.GroupUnix, domain.GroupLinux, domain.GroupOSX, domain.GroupWin}, common)
		}
	}

	result := make(map[string][]string)
	for group, set := range groups {
		if len(set) > 0 {
			result[group] = sortedKeys(set)
		}
	}
	for platform, set := range sets {
		if len(set) > 0 {
			result[platform] = sortedKeys(set)
		}
	}
	return result
}

// effectiveSets builds, for each listed platform, the union of its own
// remaining set and every group that covers it. allPlatforms non-nil
// marks the "all" stage, where the unix group also applies.
func effectiveSets(sets map[string]map[string]bool, groups map[string]map[string]bool, platforms, allPlatforms []string) []map[string]bool {
	effective := make([]map[string]bool, 0, len(platforms))
	for _, platform := range platforms {
		union := make(map[string]bool, len(sets[platform]))
		for spec := range sets[platform] {
			union[spec] = true
		}
		for spec := range groups[domain.PlatformOSName(platform)] {
			union[spec] = true
		}
		if allPlatforms != nil && domain.PlatformIsUnix(platform) {
			for spec := range groups[domain.GroupUnix] {
				union[spec] = true
			}
		}
		effective = append(effective, union)
	}
	return effective
}

func memberSets(sets map[string]map[string]bool, members []string) []map[string]bool {
	selected := make([]map[string]bool, 0, len(members))
	for _, member := range members {
		selected = append(selected, sets[member])
	}
	return selected
}

func intersect(sets []map[string]bool) map[string]bool {
	if len(sets) == 0 {
		return nil
	}
	common := make(map[string]bool)
	for spec := range sets[0] {
		inAll := true
		for _, set := range sets[1:] {
			if !set[spec] {
				inAll = false
				break
			}
		}
		if inAll {
			common[spec] = true
		}
	}
	return common
}

func removeFrom(sets map[string]map[string]bool, platforms []string, common map[string]bool) {
	for _, platform := range platforms {
		for spec := range common {
			delete(sets[platform], spec)
		}
	}
}

func removeFromGroups(groups map[string]map[string]bool, names []string, common map[string]bool) {
	for _, name := range names {
		for spec := range common {
			delete(groups[name], spec)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
