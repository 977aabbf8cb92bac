package reconciler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/keel/internal/adapters/conda"
	"go.trai.ch/keel/internal/build"
	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/zerr"
)

// timestampFile returns the freshness cache path for a spec inside a
// prefix. The file name is the spec's locked hash, so editing the spec
// (or re-locking it) orphans the old cache file and the environment
// reads as stale.
func timestampFile(prefix string, spec *domain.EnvSpec) string {
	return filepath.Join(prefix, "var", "cache", "keel", "env-specs", spec.LockedHash())
}

// timestampFresh reports whether the freshness cache file postdates
// every comparison directory in the prefix. Only the mtime is load
// bearing; the content is informational. Comparing directory mtimes is
// inherently racy within one filesystem timestamp tick, which is why
// the file is written with a future-dated mtime.
func timestampFresh(prefix string, spec *domain.EnvSpec) bool {
	stamp, err := os.Stat(timestampFile(prefix, spec))
	if err != nil {
		return false
	}
	for _, dir := range conda.ComparisonDirectories(prefix) {
		info, err := os.Stat(dir)
		if err != nil {
			// a comparison directory that doesn't exist can't have
			// changed
			continue
		}
		if info.ModTime().After(stamp.ModTime()) {
			return false
		}
	}
	return true
}

// writeTimestamp writes the freshness cache file and dates it one
// second into the future, so it postdates any filesystem change made
// in the same wall-clock second. Worst case that hides a change made
// within the next second, which is accepted.
func writeTimestamp(prefix string, spec *domain.EnvSpec) error {
	path := timestampFile(prefix, spec)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerr.Wrap(err, "failed to create freshness cache directory")
	}

	content, err := json.Marshal(map[string]string{"keel_version": build.Version})
	if err != nil {
		return zerr.Wrap(err, "failed to render freshness cache file")
	}
	if err := os.WriteFile(path, content, 0o644); err != nil { //nolint:gosec // cache file, not a secret
		return zerr.Wrap(err, "failed to write freshness cache file")
	}

	future := time.Now().Add(time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		return zerr.Wrap(err, "failed to date freshness cache file")
	}
	return nil
}

// removeTimestamp deletes the freshness cache file if present, forcing
// the next check to do a real inspection.
func removeTimestamp(prefix string, spec *domain.EnvSpec) {
	_ = os.Remove(timestampFile(prefix, spec))
}
