// Package pip adapts the pip tool bundled inside an environment.
package pip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
)

// freezePattern matches one "name==version" line of pip freeze output.
var freezePattern = regexp.MustCompile(`(?m)^(.+)==(.+)$`)

// CLI invokes the pip executable belonging to a specific environment.
// Unlike conda there is no global binary; every call resolves pip
// inside the target prefix and fails if the environment carries none.
type CLI struct {
	runner    ports.ProcessRunner
	telemetry ports.Telemetry
}

// New creates a pip CLI adapter.
func New(runner ports.ProcessRunner, telemetry ports.Telemetry) *CLI {
	return &CLI{runner: runner, telemetry: telemetry}
}

// Executable returns the path of the pip binary inside prefix, or ""
// if the environment has no pip installed.
func Executable(prefix string) string {
	candidates := []string{
		filepath.Join(prefix, "bin", "pip"),
		filepath.Join(prefix, "Scripts", "pip.exe"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (c *CLI) call(ctx context.Context, prefix string, args ...string) (ports.RunResult, error) {
	exe := Executable(prefix)
	if exe == "" {
		return ports.RunResult{}, domain.WithDetail(domain.ErrPipMissing, "prefix", prefix)
	}
	command := append([]string{exe}, args...)

	_, vertex := c.telemetry.Record(ctx, strings.Join(command, " "))
	outWriter := vertex.Stdout()
	errWriter := vertex.Stderr()

	result, err := c.runner.Run(ctx, ports.RunRequest{
		Command:  command,
		OnStdout: func(line string) { _, _ = fmt.Fprintln(outWriter, line) },
		OnStderr: func(line string) { _, _ = fmt.Fprintln(errWriter, line) },
	})
	vertex.Complete(err)
	return result, err
}

// Install installs the given pip packages into prefix.
func (c *CLI) Install(ctx context.Context, prefix string, packages []string) error {
	if len(packages) == 0 {
		return domain.WithDetail(domain.ErrNoPackages, "operation", "pip install")
	}
	args := append([]string{"install"}, packages...)
	_, err := c.call(ctx, prefix, args...)
	return err
}

// Remove uninstalls the given pip packages from prefix.
func (c *CLI) Remove(ctx context.Context, prefix string, packages []string) error {
	if len(packages) == 0 {
		return domain.WithDetail(domain.ErrNoPackages, "operation", "pip remove")
	}
	args := append([]string{"uninstall", "--yes"}, packages...)
	_, err := c.call(ctx, prefix, args...)
	return err
}

// Installed lists packages installed in prefix as a name to version
// map. An environment without pip yields an empty map rather than an
// error, since that is a perfectly healthy state for an environment
// with no pip dependencies.
func (c *CLI) Installed(ctx context.Context, prefix string) (map[string]string, error) {
	if Executable(prefix) == "" {
		return map[string]string{}, nil
	}
	result, err := c.call(ctx, prefix, "freeze")
	if err != nil {
		return nil, err
	}

	installed := map[string]string{}
	for _, match := range freezePattern.FindAllStringSubmatch(result.Stdout, -1) {
		name := strings.ToLower(strings.TrimSpace(match[1]))
		installed[name] = strings.TrimSpace(match[2])
	}
	return installed, nil
}
