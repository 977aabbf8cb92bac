// Package config provides the keel.yaml and keel-lock.yaml file layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ProjectFileName is the project configuration file name.
const ProjectFileName = "keel.yaml"

// LockFileName is the lock file name.
const LockFileName = "keel-lock.yaml"

// DefaultEnvSpecName is the spec used when a project doesn't pick one.
const DefaultEnvSpecName = "default"

// Loader implements ports.ProjectLoader on YAML files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the project configuration and lock file from dir.
// Unparsable package specs and unknown platforms are collected as
// Problems on the returned project, never returned as errors. A
// missing lock file just means no spec has lock state.
func (l *Loader) Load(dir string) (*domain.Project, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read project file")
	}

	var file ProjectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse project file")
	}

	lockFile, err := l.loadLockFile(dir)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:     file.Name,
		EnvSpecs: make(map[string]*domain.EnvSpec),
	}
	if project.Name == "" {
		project.Name = filepath.Base(dir)
	}

	specNames := make([]string, 0, len(file.EnvSpecs))
	for name := range file.EnvSpecs {
		specNames = append(specNames, name)
	}
	sort.Strings(specNames)

	for _, name := range specNames {
		dto := file.EnvSpecs[name]
		project.EnvSpecs[name] = l.buildEnvSpec(project, name, dto, &file, lockFile)
	}

	switch {
	case len(project.EnvSpecs) == 0:
		// a project with no env specs still has one implicit empty one
		platforms := file.Platforms
		if len(platforms) == 0 {
			platforms = domain.DefaultPlatforms
		}
		project.EnvSpecs[DefaultEnvSpecName] = domain.NewEnvSpec(
			DefaultEnvSpecName, nil, file.Channels, nil, platforms,
			l.lockSetFor(DefaultEnvSpecName, lockFile))
		project.DefaultEnvSpecName = DefaultEnvSpecName
	case project.EnvSpecs[DefaultEnvSpecName] != nil:
		project.DefaultEnvSpecName = DefaultEnvSpecName
	default:
		project.DefaultEnvSpecName = specNames[0]
	}

	return project, nil
}

// buildEnvSpec turns one DTO into a domain spec, folding shared
// project-level channels and platforms in and recording problems.
func (l *Loader) buildEnvSpec(project *domain.Project, name string, dto EnvSpecDTO, file *ProjectFile, lockFile *LockFile) *domain.EnvSpec {
	var condaPackages, pipPackages []string
	for _, entry := range dto.Packages {
		if entry.Spec != "" {
			condaPackages = append(condaPackages, entry.Spec)
			if domain.ParseSpec(entry.Spec) == nil {
				project.Problems = append(project.Problems,
					fmt.Sprintf("env spec '%s': invalid package spec '%s'", name, entry.Spec))
			}
			continue
		}
		for _, pipSpec := range entry.Pip {
			pipPackages = append(pipPackages, pipSpec)
			if domain.ParsePipSpec(pipSpec) == nil {
				project.Problems = append(project.Problems,
					fmt.Sprintf("env spec '%s': invalid pip package spec '%s'", name, pipSpec))
			}
		}
	}

	channels := dto.Channels
	if len(channels) == 0 {
		channels = file.Channels
	}
	rawPlatforms := dto.Platforms
	if len(rawPlatforms) == 0 {
		rawPlatforms = file.Platforms
	}
	if len(rawPlatforms) == 0 {
		rawPlatforms = domain.DefaultPlatforms
	}

	validation := domain.ValidatePlatforms(rawPlatforms)
	for _, invalid := range validation.Invalid {
		project.Problems = append(project.Problems,
			fmt.Sprintf("env spec '%s': invalid platform '%s'", name, invalid))
	}
	for _, unknown := range validation.Unknown {
		l.Logger.Warn(fmt.Sprintf("env spec '%s': unknown platform '%s'", name, unknown))
	}

	return domain.NewEnvSpec(name, condaPackages, channels, pipPackages,
		validation.Platforms, l.lockSetFor(name, lockFile))
}

// loadLockFile reads keel-lock.yaml if present. Absence is normal.
func (l *Loader) loadLockFile(dir string) (*LockFile, error) {
	data, err := os.ReadFile(filepath.Join(dir, LockFileName)) //nolint:gosec // path is provided by user
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read lock file")
	}
	var file LockFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse lock file")
	}
	return &file, nil
}

// lockSetFor builds the domain lock set for one spec name, or a
// missing one when the lock file has no entry for it.
func (l *Loader) lockSetFor(name string, lockFile *LockFile) *domain.LockSet {
	if lockFile == nil {
		return domain.NewMissingLockSet()
	}
	dto, ok := lockFile.EnvSpecs[name]
	if !ok {
		return domain.NewMissingLockSet()
	}

	enabled := lockFile.LockingEnabled
	if dto.Locked != nil {
		enabled = *dto.Locked
	}
	lockSet := domain.NewLockSet(dto.Packages, dto.Platforms, enabled)
	if dto.EnvSpecHash != "" {
		lockSet.SetEnvSpecHash(dto.EnvSpecHash)
	}
	return lockSet
}
