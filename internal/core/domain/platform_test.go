package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/keel/internal/core/domain"
)

func TestSplitPlatform(t *testing.T) {
	osName, bits, ok := domain.SplitPlatform("linux-64")
	assert.True(t, ok)
	assert.Equal(t, "linux", osName)
	assert.Equal(t, "64", bits)

	// os names may contain hyphens themselves
	osName, bits, ok = domain.SplitPlatform("linux-cos5-64")
	assert.True(t, ok)
	assert.Equal(t, "linux-cos5", osName)
	assert.Equal(t, "64", bits)

	_, _, ok = domain.SplitPlatform("noarch")
	assert.False(t, ok)
}

func TestPlatformIsUnix(t *testing.T) {
	assert.True(t, domain.PlatformIsUnix("linux-aarch64"))
	assert.True(t, domain.PlatformIsUnix("osx-arm64"))
	assert.False(t, domain.PlatformIsUnix("win-64"))
	assert.False(t, domain.PlatformIsUnix("noarch"))
}

func TestSortPlatformList_CanonicalOrder(t *testing.T) {
	sorted := domain.SortPlatformList([]string{"zos-64", "win-64", "osx-64", "unix", "linux-64", "all"})
	assert.Equal(t, []string{"all", "unix", "linux-64", "osx-64", "win-64", "zos-64"}, sorted)
}

func TestSortPlatformList_Idempotent(t *testing.T) {
	once := domain.SortPlatformList([]string{"win-32", "linux-64", "bb-64", "aa-64", "osx-64"})
	twice := domain.SortPlatformList(once)
	assert.Equal(t, once, twice)
}

func TestValidatePlatforms(t *testing.T) {
	v := domain.ValidatePlatforms([]string{"linux-64", "noarch", "weird-64", "linux-64"})
	assert.Equal(t, []string{"linux-64", "weird-64"}, v.Platforms)
	assert.Equal(t, []string{"weird-64"}, v.Unknown)
	assert.Equal(t, []string{"noarch"}, v.Invalid)
}

func TestCurrentPlatform_IsSyntacticallyValid(t *testing.T) {
	_, _, ok := domain.SplitPlatform(domain.CurrentPlatform())
	assert.True(t, ok)
}
