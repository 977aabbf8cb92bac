package reconciler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/internal/adapters/conda"
	"go.trai.ch/keel/internal/adapters/pip"
	"go.trai.ch/keel/internal/adapters/telemetry"
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// newTestManager wires a manager onto a mocked process runner, so no
// test ever forks a real conda or pip.
func newTestManager(t *testing.T) (*DefaultManager, *mocks.MockProcessRunner) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockRunner := mocks.NewMockProcessRunner(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	noop := telemetry.NewNoOp()
	return New(conda.New(mockRunner, noop), pip.New(mockRunner, noop), mockRunner, mockLogger), mockRunner
}

// installPackage fabricates the metadata file an installed package
// leaves behind.
func installPackage(t *testing.T, prefix, name, version, build string) {
	t.Helper()
	metaDir := conda.MetaDir(prefix)
	require.NoError(t, os.MkdirAll(metaDir, 0o755))
	file := filepath.Join(metaDir, fmt.Sprintf("%s-%s-%s.json", name, version, build))
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))
}

func specWithPackages(condaPackages, pipPackages []string) *domain.EnvSpec {
	return domain.NewEnvSpec("default", condaPackages, nil, pipPackages, []string{domain.CurrentPlatform()}, nil)
}

func TestFindDeviations_PlatformNotSupported(t *testing.T) {
	manager, _ := newTestManager(t)
	lockSet := domain.NewLockSet(map[string][]string{"all": {"python=3.11.4=h0_0"}}, []string{"zos-390"}, true)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"zos-390"}, lockSet)

	deviations, err := manager.FindDeviations(context.Background(), t.TempDir(), spec)
	require.NoError(t, err)

	want := fmt.Sprintf("Env spec 'default' does not support current platform %s (it supports: zos-390)",
		domain.CurrentPlatform())
	assert.Equal(t, want, deviations.Summary)
	assert.True(t, deviations.Broken)
	assert.True(t, deviations.Unfixable)
}

func TestFindDeviations_NoEnvironmentYet(t *testing.T) {
	manager, _ := newTestManager(t)
	spec := specWithPackages([]string{"python=3.11", "numpy"}, []string{"requests==2.31.0"})
	prefix := filepath.Join(t.TempDir(), "env")

	deviations, err := manager.FindDeviations(context.Background(), prefix, spec)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("'%s' doesn't look like it contains a Conda environment yet.", prefix), deviations.Summary)
	assert.Equal(t, []string{"numpy", "python"}, deviations.MissingPackages)
	assert.Equal(t, []string{"requests"}, deviations.MissingPipPackages)
	assert.True(t, deviations.Broken)
	assert.False(t, deviations.Unfixable)
}

func TestFindDeviations_FreshTimestampShortCircuits(t *testing.T) {
	manager, _ := newTestManager(t)
	spec := specWithPackages([]string{"python=3.11"}, nil)
	prefix := t.TempDir()
	// the installed state deliberately contradicts the spec; a fresh
	// stamp means it is never even read
	installPackage(t, prefix, "python", "2.7", "h0_0")
	require.NoError(t, writeTimestamp(prefix, spec))

	deviations, err := manager.FindDeviations(context.Background(), prefix, spec)
	require.NoError(t, err)
	assert.Equal(t, "OK", deviations.Summary)
	assert.True(t, deviations.OK())
}

func TestFindDeviations_MissingAndWrongVersions(t *testing.T) {
	manager, _ := newTestManager(t)
	spec := specWithPackages([]string{"python=3.11", "numpy", "requests=2.31"}, nil)
	prefix := t.TempDir()
	installPackage(t, prefix, "python", "3.10.1", "h0_0")
	installPackage(t, prefix, "requests", "2.31.0", "py311_0")

	deviations, err := manager.FindDeviations(context.Background(), prefix, spec)
	require.NoError(t, err)

	assert.Equal(t, []string{"numpy"}, deviations.MissingPackages)
	assert.Equal(t, []string{"python"}, deviations.WrongVersionPackages)
	assert.Empty(t, deviations.MissingPipPackages)
	assert.Equal(t, "Conda environment is missing packages: numpy and has wrong versions of: python", deviations.Summary)
	assert.True(t, deviations.Broken)
	assert.False(t, deviations.Unfixable)
}

func TestFindDeviations_BuildStringChecked(t *testing.T) {
	manager, _ := newTestManager(t)
	spec := specWithPackages([]string{"python=3.11=h9999_1"}, nil)
	prefix := t.TempDir()
	installPackage(t, prefix, "python", "3.11", "h0_0")

	deviations, err := manager.FindDeviations(context.Background(), prefix, spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, deviations.WrongVersionPackages)
	assert.Equal(t, "Conda environment has wrong versions of: python", deviations.Summary)
}

func TestFindDeviations_MissingPipPackages(t *testing.T) {
	manager, _ := newTestManager(t)
	spec := specWithPackages([]string{"python"}, []string{"requests==2.31.0"})
	prefix := t.TempDir()
	installPackage(t, prefix, "python", "3.11.4", "h0_0")
	// no pip executable in the prefix, so the pip listing is empty
	// without any subprocess

	deviations, err := manager.FindDeviations(context.Background(), prefix, spec)
	require.NoError(t, err)
	assert.Empty(t, deviations.MissingPackages)
	assert.Equal(t, []string{"requests"}, deviations.MissingPipPackages)
	assert.Equal(t, "Conda environment is missing packages: requests", deviations.Summary)
}

func TestFindDeviations_StaleButCorrectNeedsMarking(t *testing.T) {
	manager, _ := newTestManager(t)
	spec := specWithPackages([]string{"python=3.11"}, nil)
	prefix := t.TempDir()
	installPackage(t, prefix, "python", "3.11.4", "h0_0")

	deviations, err := manager.FindDeviations(context.Background(), prefix, spec)
	require.NoError(t, err)
	assert.Equal(t, "Conda environment needs to be marked as up-to-date", deviations.Summary)
	assert.True(t, deviations.Broken)
	assert.False(t, deviations.OK())
}

func TestVersionMatches(t *testing.T) {
	assert.True(t, versionMatches("1.2", "1.2"))
	assert.True(t, versionMatches("1.2.3", "1.2"), "dotted extension satisfies the pin")
	assert.False(t, versionMatches("1.20", "1.2"))
	assert.False(t, versionMatches("1.2", "1.2.3"))
}

func TestComposeSummary_ReadOnlySuffix(t *testing.T) {
	summary := composeSummary(&domain.EnvironmentDeviations{
		MissingPackages: []string{"numpy"},
		Unfixable:       true,
	})
	assert.Equal(t, "Conda environment is missing packages: numpy and the environment is read-only", summary)
}

func TestComposeSummary_MergesPipIntoMissing(t *testing.T) {
	summary := composeSummary(&domain.EnvironmentDeviations{
		MissingPackages:    []string{"zlib"},
		MissingPipPackages: []string{"requests"},
	})
	assert.Equal(t, "Conda environment is missing packages: requests, zlib", summary)
	assert.False(t, strings.Contains(summary, "wrong versions"))
}
