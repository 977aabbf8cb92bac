package domain

import (
	"regexp"
	"strings"
)

// PipPackageSpec is a parsed pip-dialect specifier. Only the name is
// modeled; version and marker syntax is left for pip itself to enforce.
type PipPackageSpec struct {
	Name string
}

var (
	pipNamePattern       = regexp.MustCompile(`^ *([A-Za-z0-9][-_.A-Za-z0-9]+)`)
	eggFragmentPattern   = regexp.MustCompile(`[#&]egg=([^&]*)`)
	eggNameSuffixPattern = regexp.MustCompile(`^(.*?)(?:-dev|-\d.*)$`)
)

// pipURLSchemes are the URL schemes pip understands for requirement
// specifiers.
var pipURLSchemes = map[string]bool{
	"http": true, "https": true, "file": true, "ftp": true,
	"git": true, "git+http": true, "git+https": true, "git+ssh": true,
	"git+git": true, "git+file": true,
	"hg": true, "hg+http": true, "hg+https": true, "hg+ssh": true,
	"hg+static-http": true,
	"bzr":            true, "bzr+http": true, "bzr+https": true, "bzr+ssh": true,
	"bzr+sftp": true, "bzr+ftp": true, "bzr+lp": true,
	"svn": true, "svn+ssh": true, "svn+http": true, "svn+https": true,
	"svn+svn": true,
}

// ParsePipSpec parses a pip-dialect specifier, understanding plain
// names (with optional version suffixes) and URLs carrying an
// "#egg=name" fragment. Returns nil when no name can be extracted.
// Parsing exactly as pip would requires pip's own code, so anything
// beyond the name fails late, when pip is invoked.
func ParsePipSpec(spec string) *PipPackageSpec {
	var name string
	if isPipURL(spec) {
		name = extractEggName(spec)
	} else {
		name = extractPipName(spec)
	}
	if name == "" {
		return nil
	}
	return &PipPackageSpec{Name: name}
}

// PipSpecName returns the name a pip spec refers to, or the raw string
// when unparsable. Useful as a merge key.
func PipSpecName(spec string) string {
	parsed := ParsePipSpec(spec)
	if parsed == nil {
		return spec
	}
	return parsed.Name
}

func isPipURL(s string) bool {
	scheme, _, found := strings.Cut(s, ":")
	return found && pipURLSchemes[strings.ToLower(scheme)]
}

func extractPipName(spec string) string {
	m := pipNamePattern.FindStringSubmatch(spec)
	if m == nil {
		return ""
	}
	return m[1]
}

func extractEggName(url string) string {
	m := eggFragmentPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	name := extractPipName(m[1])
	if name == "" {
		return ""
	}
	// "#egg=foo-1.2" pins nothing; pip ignores the version suffix.
	if sm := eggNameSuffixPattern.FindStringSubmatch(name); sm != nil {
		return sm[1]
	}
	return name
}
