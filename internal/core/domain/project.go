package domain

// Project is one loaded project configuration: its env specs plus any
// validation problems found while loading. Problems don't prevent
// loading; an unparsable package spec is reported here and fails with
// a precise message only when it is actually used.
type Project struct {
	// Name is the project name.
	Name string

	// EnvSpecs maps spec name to spec.
	EnvSpecs map[string]*EnvSpec

	// DefaultEnvSpecName names the spec used when the caller doesn't
	// pick one.
	DefaultEnvSpecName string

	// Problems holds human-readable validation findings, in file order.
	Problems []string
}

// EnvSpec returns the named spec, falling back to the default spec
// when name is empty. Second return is false when no such spec exists.
func (p *Project) EnvSpec(name string) (*EnvSpec, bool) {
	if name == "" {
		name = p.DefaultEnvSpecName
	}
	spec, ok := p.EnvSpecs[name]
	return spec, ok
}
