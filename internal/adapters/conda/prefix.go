package conda

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/zerr"
)

// metaDirName is the fixed metadata subdirectory of every environment,
// holding one JSON file per installed package.
const metaDirName = "conda-meta"

// MetaDir returns the package-metadata directory of a prefix.
func MetaDir(prefix string) string {
	return filepath.Join(prefix, metaDirName)
}

// HasMetaDir reports whether prefix looks like an environment at all.
func HasMetaDir(prefix string) bool {
	info, err := os.Stat(MetaDir(prefix))
	return err == nil && info.IsDir()
}

// PinnedFile returns the path of the transient pin file conda consults
// during install to hold packages at their current version.
func PinnedFile(prefix string) string {
	return filepath.Join(MetaDir(prefix), "pinned")
}

// PackedMarkerFile returns the path of the marker a pack tool leaves
// behind in a relocated environment, recording the platform it was
// packed for.
func PackedMarkerFile(prefix string) string {
	return filepath.Join(MetaDir(prefix), ".packed")
}

// UnpackExecutable returns the path of the environment's own unpack
// entry point, or "" if the environment doesn't carry one.
func UnpackExecutable(prefix string) string {
	candidates := []string{
		filepath.Join(prefix, "bin", "conda-unpack"),
		filepath.Join(prefix, "Scripts", "conda-unpack.exe"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// ComparisonDirectories lists the directories inside a prefix whose
// mtimes change when packages are installed or removed. Deliberately
// heuristic: directories that change at runtime (var/run and friends)
// are excluded, and no full walk is done. On Linux a directory mtime
// only moves when immediate children are added or removed.
func ComparisonDirectories(prefix string) []string {
	dirs, _ := filepath.Glob(filepath.Join(prefix, "lib", "python*", "site-packages"))
	dirs = append(dirs,
		filepath.Join(prefix, "bin"),
		filepath.Join(prefix, "lib"),
		// windows layout
		filepath.Join(prefix, "Lib", "site-packages"),
		filepath.Join(prefix, "Library", "bin"),
		filepath.Join(prefix, "Scripts"),
		MetaDir(prefix),
	)
	return dirs
}

// Installed lists the packages installed in a prefix by scanning the
// metadata directory. No subprocess is involved. A missing metadata
// directory yields an empty map; unparsable file names are skipped.
func Installed(prefix string) (map[string]domain.InstalledPackage, error) {
	entries, err := os.ReadDir(MetaDir(prefix))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]domain.InstalledPackage{}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to list environment metadata"), "prefix", prefix)
	}

	installed := make(map[string]domain.InstalledPackage)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		pkg, ok := ParseDistName(strings.TrimSuffix(name, ".json"))
		if !ok {
			continue
		}
		installed[pkg.Name] = pkg
	}
	return installed, nil
}

// ParseDistName parses the "<name>-<version>-<build>" naming convention
// from the right, since package names may themselves contain hyphens.
func ParseDistName(dist string) (domain.InstalledPackage, bool) {
	buildSep := strings.LastIndex(dist, "-")
	if buildSep <= 0 {
		return domain.InstalledPackage{}, false
	}
	versionSep := strings.LastIndex(dist[:buildSep], "-")
	if versionSep <= 0 {
		return domain.InstalledPackage{}, false
	}
	return domain.InstalledPackage{
		Name:    dist[:versionSep],
		Version: dist[versionSep+1 : buildSep],
		Build:   dist[buildSep+1:],
	}, true
}
