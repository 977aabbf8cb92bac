package reconciler

import (
	"context"
	"sort"

	"go.trai.ch/keel/internal/core/domain"
)

// ResolveDependencies runs the external tool's dry-run resolution once
// per requested platform and factors the per-platform pinned lists
// into a lock set. The current platform goes first so that a universal
// misconfiguration fails before the slow cross-platform round trips.
func (m *DefaultManager) ResolveDependencies(ctx context.Context, packageSpecs, channels, platforms []string) (*domain.LockSet, error) {
	if len(packageSpecs) == 0 {
		return nil, domain.WithDetail(domain.ErrNoPackages, "operation", "resolve")
	}
	if len(platforms) == 0 {
		platforms = domain.DefaultPlatforms
	}

	byPlatform := make(map[string][]string, len(platforms))
	for _, platform := range resolutionOrder(platforms) {
		resolved, err := m.conda.ResolveDependencies(ctx, packageSpecs, channels, platform)
		if err != nil {
			return nil, domain.WithDetail(err, "platform", platform)
		}
		pinned := make([]string, 0, len(resolved))
		for _, pkg := range resolved {
			pinned = append(pinned, pkg.PinnedSpec())
		}
		sort.Strings(pinned)
		byPlatform[platform] = pinned
	}

	return domain.NewLockSet(extractCommon(byPlatform), platforms, true), nil
}

// resolutionOrder puts the current platform first, then the rest in
// canonical order.
func resolutionOrder(platforms []string) []string {
	current := domain.CurrentPlatform()
	ordered := make([]string, 0, len(platforms))
	rest := make([]string, 0, len(platforms))
	for _, platform := range domain.SortPlatformList(platforms) {
		if platform == current {
			ordered = append(ordered, platform)
			continue
		}
		rest = append(rest, platform)
	}
	return append(ordered, rest...)
}
