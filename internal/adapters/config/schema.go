package config

import "gopkg.in/yaml.v3"

// ProjectFile represents the structure of the keel.yaml project file.
// Shared channels and platforms apply to every env spec that doesn't
// declare its own.
type ProjectFile struct {
	Name      string                `yaml:"name"`
	Channels  []string              `yaml:"channels"`
	Platforms []string              `yaml:"platforms"`
	EnvSpecs  map[string]EnvSpecDTO `yaml:"env_specs"`
}

// EnvSpecDTO represents one env spec definition. Packages is a mixed
// list: plain strings are conda package specs, and one entry may be a
// mapping with a "pip" key listing pip package specs.
type EnvSpecDTO struct {
	Packages  []PackageEntry `yaml:"packages"`
	Channels  []string       `yaml:"channels"`
	Platforms []string       `yaml:"platforms"`
}

// PackageEntry is one item of a packages list. Exactly one of Spec
// (plain conda spec string) or Pip (nested pip list) is set.
type PackageEntry struct {
	Spec string
	Pip  []string
}

// UnmarshalYAML accepts either a scalar spec string or a mapping with
// a "pip" key.
func (e *PackageEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&e.Spec)
	}
	var nested struct {
		Pip []string `yaml:"pip"`
	}
	if err := value.Decode(&nested); err != nil {
		return err
	}
	e.Pip = nested.Pip
	return nil
}

// LockFile represents the structure of the keel-lock.yaml file.
type LockFile struct {
	LockingEnabled bool                  `yaml:"locking_enabled"`
	EnvSpecs       map[string]LockSetDTO `yaml:"env_specs"`
}

// LockSetDTO represents one persisted lock set. Locked defaults to the
// file-level locking_enabled flag when omitted.
type LockSetDTO struct {
	Locked      *bool               `yaml:"locked"`
	EnvSpecHash string              `yaml:"env_spec_hash"`
	Platforms   []string            `yaml:"platforms"`
	Packages    map[string][]string `yaml:"packages"`
}
