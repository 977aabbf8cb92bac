package commands_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/cmd/keel/commands"
	"go.trai.ch/keel/internal/app"
	"go.trai.ch/keel/internal/build"
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type cliFixture struct {
	cli     *commands.CLI
	out     *bytes.Buffer
	loader  *mocks.MockProjectLoader
	store   *mocks.MockLockStore
	manager *mocks.MockEnvironmentManager
}

func newCLI(t *testing.T) *cliFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &cliFixture{
		out:     &bytes.Buffer{},
		loader:  mocks.NewMockProjectLoader(ctrl),
		store:   mocks.NewMockLockStore(ctrl),
		manager: mocks.NewMockEnvironmentManager(ctrl),
	}
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	f.cli = commands.New(app.New(f.loader, f.store, f.manager, logger))
	f.cli.SetOut(f.out)
	return f
}

func (f *cliFixture) run(args ...string) error {
	f.cli.SetArgs(args)
	return f.cli.Execute(context.Background())
}

func singleSpecProject(spec *domain.EnvSpec) *domain.Project {
	return &domain.Project{
		Name:               "demo",
		EnvSpecs:           map[string]*domain.EnvSpec{spec.Name(): spec},
		DefaultEnvSpecName: spec.Name(),
	}
}

func TestVersionCommand(t *testing.T) {
	f := newCLI(t)
	require.NoError(t, f.run("version"))
	assert.Contains(t, f.out.String(), build.Version)
}

func TestCheckCommand_OK(t *testing.T) {
	f := newCLI(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load(".").Return(singleSpecProject(spec), nil)
	f.manager.EXPECT().FindDeviations(gomock.Any(), gomock.Any(), spec).
		Return(&domain.EnvironmentDeviations{Summary: "OK"}, nil)

	require.NoError(t, f.run("check"))
	assert.Contains(t, f.out.String(), "OK")
}

func TestCheckCommand_ReportsDeviationsAndFails(t *testing.T) {
	f := newCLI(t)
	spec := domain.NewEnvSpec("default", []string{"python", "numpy"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load(".").Return(singleSpecProject(spec), nil)
	f.manager.EXPECT().FindDeviations(gomock.Any(), gomock.Any(), spec).
		Return(&domain.EnvironmentDeviations{
			Summary:         "Conda environment is missing packages: numpy",
			MissingPackages: []string{"numpy"},
			Broken:          true,
		}, nil)

	err := f.run("check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment deviates from its spec")
	assert.Contains(t, f.out.String(), "Conda environment is missing packages: numpy")
	assert.Contains(t, f.out.String(), "missing packages: numpy")
}

func TestCheckCommand_ExplicitPrefix(t *testing.T) {
	f := newCLI(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load("/proj").Return(singleSpecProject(spec), nil)
	f.manager.EXPECT().ResolveEnvPrefix(gomock.Any(), "/elsewhere").Return("/elsewhere", nil)
	f.manager.EXPECT().FindDeviations(gomock.Any(), "/elsewhere", spec).
		Return(&domain.EnvironmentDeviations{Summary: "OK"}, nil)

	require.NoError(t, f.run("check", "-C", "/proj", "--prefix", "/elsewhere"))
}

func TestPrepareCommand(t *testing.T) {
	f := newCLI(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load("/proj").Return(singleSpecProject(spec), nil)
	f.manager.EXPECT().FindDeviations(gomock.Any(), gomock.Any(), spec).
		Return(&domain.EnvironmentDeviations{Summary: "OK"}, nil)

	require.NoError(t, f.run("prepare", "-C", "/proj"))
}

func TestLockCommand_UsesNamedSpec(t *testing.T) {
	f := newCLI(t)
	spec := domain.NewEnvSpec("tools", []string{"git"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load(".").Return(singleSpecProject(spec), nil)
	f.manager.EXPECT().ResolveDependencies(gomock.Any(), []string{"git"}, gomock.Any(), []string{"linux-64"}).
		Return(domain.NewLockSet(map[string][]string{"all": {"git=2.42.0=0"}}, []string{"linux-64"}, true), nil)
	f.store.EXPECT().Save(".", gomock.Any()).Return(nil)

	require.NoError(t, f.run("lock", "-e", "tools"))
}

func TestRemoveCommand_RequiresPackages(t *testing.T) {
	f := newCLI(t)
	err := f.run("remove")
	require.Error(t, err)
}

func TestRemoveCommand(t *testing.T) {
	f := newCLI(t)
	spec := domain.NewEnvSpec("default", []string{"python"}, nil, nil, []string{"linux-64"}, nil)
	f.loader.EXPECT().Load(".").Return(singleSpecProject(spec), nil)
	f.manager.EXPECT().RemovePackages(gomock.Any(), gomock.Any(), []string{"numpy", "scipy"}).Return(nil)

	require.NoError(t, f.run("remove", "numpy", "scipy"))
}
