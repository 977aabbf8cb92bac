package conda

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/zerr"
)

// subdirEnv is conda's own environment variable forcing resolution for
// a foreign platform subdir.
const subdirEnv = "CONDA_SUBDIR"

// ResolveDependencies asks conda what it would install for the given
// constraints on the given platform, without installing anything. The
// returned packages are the full transitive set, each fully pinned.
func (c *CLI) ResolveDependencies(ctx context.Context, packages, channels []string, platform string) ([]domain.InstalledPackage, error) {
	if len(packages) == 0 {
		return nil, domain.WithDetail(domain.ErrNoPackages, "operation", "resolve")
	}

	// even with --dry-run conda wants the prefix to not exist yet, so
	// point it somewhere disposable
	scratch, err := os.MkdirTemp("", "keel-resolve-")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create scratch prefix")
	}
	defer os.RemoveAll(scratch) //nolint:errcheck // best-effort cleanup

	args := []string{"create", "--yes", "--quiet", "--json", "--dry-run", "--prefix", scratch}
	args = append(args, channelArgs(channels)...)
	args = append(args, packages...)

	var extraEnv []string
	if platform != "" && platform != domain.CurrentPlatform() {
		extraEnv = []string{subdirEnv + "=" + platform}
	}

	var response json.RawMessage
	if err := c.callAndParseJSON(ctx, extraEnv, &response, args...); err != nil {
		return nil, err
	}

	resolved := extractLinkEntries(response)
	if len(resolved) == 0 {
		// conda produced JSON, but in no shape we know; this tool
		// version speaks a dialect we don't
		shapeErr := domain.WithDetail(domain.ErrMalformedToolOutput, "operation", "resolve")
		shapeErr = zerr.With(shapeErr, "platform", platform)
		return nil, zerr.With(shapeErr, "response", string(response))
	}
	return resolved, nil
}

// actionsEnvelope is the stable outer shell of a dry-run response.
type actionsEnvelope struct {
	Actions json.RawMessage `json:"actions"`
}

// structuredLink is the modern LINK entry shape.
type structuredLink struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	BuildString string `json:"build_string"`
}

// extractLinkEntries pulls the planned-install package list out of a
// dry-run response, tolerating the shapes different conda versions
// emit: "actions" as a single object or a list of objects, and LINK
// entries as structured records or legacy dist strings. Each fallback
// is tried independently; an empty result means no shape matched.
func extractLinkEntries(response json.RawMessage) []domain.InstalledPackage {
	var envelope actionsEnvelope
	if err := json.Unmarshal(response, &envelope); err != nil || len(envelope.Actions) == 0 {
		return nil
	}

	var actionObjects []json.RawMessage
	if err := json.Unmarshal(envelope.Actions, &actionObjects); err != nil {
		// older conda: a single action object rather than a list
		actionObjects = []json.RawMessage{envelope.Actions}
	}

	var resolved []domain.InstalledPackage
	for _, action := range actionObjects {
		var withLinks struct {
			Link []json.RawMessage `json:"LINK"`
		}
		if err := json.Unmarshal(action, &withLinks); err != nil {
			continue
		}
		for _, link := range withLinks.Link {
			if pkg, ok := decodeLinkEntry(link); ok {
				resolved = append(resolved, pkg)
			}
		}
	}
	return resolved
}

// decodeLinkEntry decodes one LINK entry, structured or legacy.
func decodeLinkEntry(link json.RawMessage) (domain.InstalledPackage, bool) {
	var record structuredLink
	if err := json.Unmarshal(link, &record); err == nil {
		if record.Name != "" && record.Version != "" && record.BuildString != "" {
			return domain.InstalledPackage{
				Name:    record.Name,
				Version: record.Version,
				Build:   record.BuildString,
			}, true
		}
	}

	// legacy string form: "name-version-build extra..." where only the
	// first whitespace-delimited token is the dist string
	var legacy string
	if err := json.Unmarshal(link, &legacy); err != nil {
		return domain.InstalledPackage{}, false
	}
	dist, _, _ := strings.Cut(strings.TrimSpace(legacy), " ")
	return ParseDistName(dist)
}
