package domain

import (
	"regexp"
	"strings"
)

// PackageSpec is a parsed conda-dialect package specifier such as
// "numpy", "numpy=1.11", "numpy=1.11=py36_0" or "numpy>=1.11,<2".
//
// Specs are ephemeral: they are recomputed from strings on demand and
// never persisted on their own.
type PackageSpec struct {
	// Name is the package name, lowercased.
	Name string

	// CondaConstraint is the raw conda-style constraint ("=1.11=py36_0"),
	// empty if the spec had none.
	CondaConstraint string

	// PipConstraint is the raw pip-style comparison constraint
	// (">=1.11,<2") with whitespace stripped, empty if the spec had none.
	PipConstraint string

	// ExactVersion is set only when the constraint pins a single version.
	ExactVersion string

	// ExactBuild is set only when ExactVersion is set and the constraint
	// pins a build string as well.
	ExactBuild string
}

// specPattern mirrors conda's own matcher: a name excluding comparison
// characters and whitespace, then optionally a conda constraint
// (=version or =version=build) or a pip-style comparison chain.
var specPattern = regexp.MustCompile(`^([^=<>!\s]+)\s*(?:(=[^=<>!]+(?:=[^=<>!]+)?)|([=<>!]{1,2}.+))?$`)

// condaConstraintPattern splits "=version" / "=version=build".
var condaConstraintPattern = regexp.MustCompile(`^=([^=]+)(?:=([^=]+))?$`)

// multiValuePattern detects version tokens that match more than one
// version, which therefore never count as an exact pin.
var multiValuePattern = regexp.MustCompile(`[|*,]`)

// ParseSpec parses a conda-dialect package specifier. It returns nil for
// strings it cannot understand; unparsable specs are a validation
// problem for higher layers, never an error from this package.
func ParseSpec(spec string) *PackageSpec {
	m := specPattern.FindStringSubmatch(spec)
	if m == nil {
		return nil
	}

	parsed := &PackageSpec{
		Name:            strings.ToLower(m[1]),
		CondaConstraint: m[2],
		PipConstraint:   strings.ReplaceAll(m[3], " ", ""),
	}

	switch {
	case parsed.CondaConstraint != "":
		cm := condaConstraintPattern.FindStringSubmatch(parsed.CondaConstraint)
		if cm == nil {
			return parsed
		}
		version, build := cm[1], cm[2]
		if multiValuePattern.MatchString(version) || multiValuePattern.MatchString(build) {
			return parsed
		}
		parsed.ExactVersion = version
		parsed.ExactBuild = build
	case strings.HasPrefix(parsed.PipConstraint, "=="):
		version := strings.TrimPrefix(parsed.PipConstraint, "==")
		if !multiValuePattern.MatchString(version) {
			parsed.ExactVersion = version
		}
	}

	return parsed
}

// SpecName returns the package name a spec string refers to, or the raw
// string itself when the spec is unparsable. Useful as a merge key.
func SpecName(spec string) string {
	parsed := ParseSpec(spec)
	if parsed == nil {
		return spec
	}
	return parsed.Name
}
