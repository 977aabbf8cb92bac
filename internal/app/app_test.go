package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/internal/app"
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	app     *app.App
	loader  *mocks.MockProjectLoader
	store   *mocks.MockLockStore
	manager *mocks.MockEnvironmentManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		loader:  mocks.NewMockProjectLoader(ctrl),
		store:   mocks.NewMockLockStore(ctrl),
		manager: mocks.NewMockEnvironmentManager(ctrl),
	}
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	f.app = app.New(f.loader, f.store, f.manager, logger)
	return f
}

func projectWith(specs ...*domain.EnvSpec) *domain.Project {
	project := &domain.Project{
		Name:     "demo",
		EnvSpecs: make(map[string]*domain.EnvSpec),
	}
	for _, spec := range specs {
		project.EnvSpecs[spec.Name()] = spec
	}
	project.DefaultEnvSpecName = specs[0].Name()
	return project
}

func TestLock_ResolvesAndSaves(t *testing.T) {
	f := newFixture(t)
	spec := domain.NewEnvSpec("default",
		[]string{"python=3.11"}, []string{"conda-forge"}, []string{"requests==2.31.0"},
		[]string{"linux-64"}, domain.NewMissingLockSet())
	f.loader.EXPECT().Load("/proj").Return(projectWith(spec), nil)

	resolved := domain.NewLockSet(map[string][]string{
		"all": {"python=3.11.4=h0_0"},
	}, []string{"linux-64"}, true)
	f.manager.EXPECT().
		ResolveDependencies(gomock.Any(), []string{"python=3.11"}, []string{"conda-forge"}, []string{"linux-64"}).
		Return(resolved, nil)

	var saved map[string]*domain.LockSet
	f.store.EXPECT().Save("/proj", gomock.Any()).
		DoAndReturn(func(_ string, lockSets map[string]*domain.LockSet) error {
			saved = lockSets
			return nil
		})

	require.NoError(t, f.app.Lock(context.Background(), "/proj", ""))

	require.Contains(t, saved, "default")
	locked := saved["default"]
	assert.Equal(t, spec.Hash(), locked.EnvSpecHash())
	assert.Equal(t, []string{"python=3.11.4=h0_0"}, locked.PackageSpecsForPlatform("linux-64"))
	// declared pip packages ride along in their own group
	assert.Equal(t, []string{"requests==2.31.0"}, locked.PipPackageSpecs())
}

func TestLock_PreservesSiblingLockSets(t *testing.T) {
	f := newFixture(t)
	siblingLock := domain.NewLockSet(map[string][]string{"all": {"git=2.42.0=0"}}, []string{"linux-64"}, true)
	sibling := domain.NewEnvSpec("tools", []string{"git"}, nil, nil, []string{"linux-64"}, siblingLock)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, domain.NewMissingLockSet())
	f.loader.EXPECT().Load("/proj").Return(projectWith(spec, sibling), nil)

	f.manager.EXPECT().ResolveDependencies(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.NewLockSet(map[string][]string{"all": {"python=3.11.4=h0_0"}}, []string{"linux-64"}, true), nil)

	var saved map[string]*domain.LockSet
	f.store.EXPECT().Save("/proj", gomock.Any()).
		DoAndReturn(func(_ string, lockSets map[string]*domain.LockSet) error {
			saved = lockSets
			return nil
		})

	require.NoError(t, f.app.Lock(context.Background(), "/proj", "default"))
	assert.Len(t, saved, 2)
	assert.Same(t, siblingLock, saved["tools"])
}

func TestLock_UnknownSpec(t *testing.T) {
	f := newFixture(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load("/proj").Return(projectWith(spec), nil)

	err := f.app.Lock(context.Background(), "/proj", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env spec not found")
}

func TestCheck_DefaultsPrefixToProjectEnvs(t *testing.T) {
	f := newFixture(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load("/proj").Return(projectWith(spec), nil)

	want := &domain.EnvironmentDeviations{Summary: "OK"}
	f.manager.EXPECT().FindDeviations(gomock.Any(), "/proj/envs/default", spec).Return(want, nil)

	deviations, err := f.app.Check(context.Background(), "/proj", "", "")
	require.NoError(t, err)
	assert.Same(t, want, deviations)
}

func TestCheck_ExplicitPrefixWins(t *testing.T) {
	f := newFixture(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load("/proj").Return(projectWith(spec), nil)
	f.manager.EXPECT().ResolveEnvPrefix(gomock.Any(), "/elsewhere").Return("/elsewhere", nil)
	f.manager.EXPECT().FindDeviations(gomock.Any(), "/elsewhere", spec).
		Return(&domain.EnvironmentDeviations{Summary: "OK"}, nil)

	_, err := f.app.Check(context.Background(), "/proj", "", "/elsewhere")
	require.NoError(t, err)
}

func TestCheck_NamedEnvironmentResolvedThroughTool(t *testing.T) {
	f := newFixture(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load("/proj").Return(projectWith(spec), nil)
	f.manager.EXPECT().ResolveEnvPrefix(gomock.Any(), "science").Return("/opt/conda/envs/science", nil)
	f.manager.EXPECT().FindDeviations(gomock.Any(), "/opt/conda/envs/science", spec).
		Return(&domain.EnvironmentDeviations{Summary: "OK"}, nil)

	_, err := f.app.Check(context.Background(), "/proj", "", "science")
	require.NoError(t, err)
}

func TestPrepare_SkipsFixWhenOK(t *testing.T) {
	f := newFixture(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load("/proj").Return(projectWith(spec), nil)
	f.manager.EXPECT().FindDeviations(gomock.Any(), "/proj/envs/default", spec).
		Return(&domain.EnvironmentDeviations{Summary: "OK"}, nil)

	require.NoError(t, f.app.Prepare(context.Background(), "/proj", "", ""))
}

func TestPrepare_FixesWithCreate(t *testing.T) {
	f := newFixture(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load("/proj").Return(projectWith(spec), nil)

	deviations := &domain.EnvironmentDeviations{
		Summary:         "Conda environment is missing packages: python",
		MissingPackages: []string{"python"},
		Broken:          true,
	}
	f.manager.EXPECT().FindDeviations(gomock.Any(), "/proj/envs/default", spec).Return(deviations, nil)
	f.manager.EXPECT().FixDeviations(gomock.Any(), "/proj/envs/default", spec, deviations, true).Return(nil)

	require.NoError(t, f.app.Prepare(context.Background(), "/proj", "", ""))
}

func TestRemovePackages(t *testing.T) {
	f := newFixture(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load("/proj").Return(projectWith(spec), nil)
	f.manager.EXPECT().RemovePackages(gomock.Any(), "/proj/envs/default", []string{"numpy"}).Return(nil)

	require.NoError(t, f.app.RemovePackages(context.Background(), "/proj", "", "", []string{"numpy"}))
}
