// Package conda adapts the conda command-line tool.
package conda

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

// noOverrideChannelsEnv, when set, stops us from passing
// --override-channels alongside explicitly configured channels.
const noOverrideChannelsEnv = "KEEL_NO_OVERRIDE_CHANNELS"

// condaExeEnv overrides which conda binary is invoked.
const condaExeEnv = "KEEL_CONDA_EXE"

// CLI invokes the conda tool as a subprocess. It is stateless apart
// from the resolved executable path, which is read-only after
// construction, so one CLI may be shared across goroutines.
type CLI struct {
	runner    ports.ProcessRunner
	telemetry ports.Telemetry
	exe       string
}

// New creates a conda CLI adapter. The conda binary is taken from
// KEEL_CONDA_EXE, defaulting to whatever "conda" is on PATH.
func New(runner ports.ProcessRunner, telemetry ports.Telemetry) *CLI {
	exe := os.Getenv(condaExeEnv)
	if exe == "" {
		exe = "conda"
	}
	return &CLI{
		runner:    runner,
		telemetry: telemetry,
		exe:       exe,
	}
}

// call runs conda with the given arguments, streaming output into a
// telemetry vertex named after the invocation.
func (c *CLI) call(ctx context.Context, jsonMode bool, extraEnv []string, args ...string) (ports.RunResult, error) {
	command := append([]string{c.exe}, args...)

	_, vertex := c.telemetry.Record(ctx, strings.Join(command, " "))
	outWriter := vertex.Stdout()
	errWriter := vertex.Stderr()

	result, err := c.runner.Run(ctx, ports.RunRequest{
		Command:  command,
		ExtraEnv: extraEnv,
		JSONMode: jsonMode,
		OnStdout: func(line string) { _, _ = fmt.Fprintln(outWriter, line) },
		OnStderr: func(line string) { _, _ = fmt.Fprintln(errWriter, line) },
	})
	vertex.Complete(err)
	return result, err
}

// callAndParseJSON runs conda in JSON mode and decodes stdout into out.
// A successful exit with undecodable output is its own failure kind:
// the tool ran, but we cannot understand this tool version.
func (c *CLI) callAndParseJSON(ctx context.Context, extraEnv []string, out any, args ...string) error {
	result, err := c.call(ctx, true, extraEnv, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(result.Stdout), out); err != nil {
		parseErr := domain.WithDetail(domain.ErrMalformedToolOutput, "parse_error", err.Error())
		parseErr = zerr.With(parseErr, "command", c.exe+" "+strings.Join(args, " "))
		return zerr.With(parseErr, "kind", "output")
	}
	return nil
}

// Info returns conda's own configuration report. No guarantee is made
// about which keys exist.
func (c *CLI) Info(ctx context.Context) (map[string]any, error) {
	var info map[string]any
	if err := c.callAndParseJSON(ctx, nil, &info, "info", "--json"); err != nil {
		return nil, err
	}
	return info, nil
}

// ResolveEnvToPrefix converts an environment name or path into a
// canonical prefix path, or "" if no such environment is registered.
func (c *CLI) ResolveEnvToPrefix(ctx context.Context, nameOrPrefix string) (string, error) {
	if filepath.IsAbs(nameOrPrefix) {
		return nameOrPrefix, nil
	}

	info, err := c.Info(ctx)
	if err != nil {
		return "", err
	}

	rootPrefix, _ := info["root_prefix"].(string)
	if nameOrPrefix == "root" {
		return rootPrefix, nil
	}

	envs, _ := info["envs"].([]any)
	for _, env := range envs {
		prefix, ok := env.(string)
		if ok && filepath.Base(prefix) == nameOrPrefix {
			return prefix, nil
		}
	}
	return "", nil
}

// Create creates a new environment at prefix with the given packages.
func (c *CLI) Create(ctx context.Context, prefix string, packages, channels []string) error {
	if len(packages) == 0 {
		return domain.WithDetail(domain.ErrNoPackages, "operation", "create")
	}
	if _, err := os.Stat(prefix); err == nil {
		return domain.WithDetail(domain.ErrEnvironmentExists, "prefix", prefix)
	}

	args := []string{"create", "--yes", "--quiet", "--prefix", prefix}
	args = append(args, channelArgs(channels)...)
	args = append(args, packages...)

	if _, err := c.call(ctx, false, nil, args...); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create environment"), "prefix", prefix)
	}
	return nil
}

// Install installs packages into an existing environment.
func (c *CLI) Install(ctx context.Context, prefix string, packages, channels []string) error {
	if len(packages) == 0 {
		return domain.WithDetail(domain.ErrNoPackages, "operation", "install")
	}

	args := []string{"install", "--yes", "--quiet", "--prefix", prefix}
	args = append(args, channelArgs(channels)...)
	args = append(args, packages...)

	if _, err := c.call(ctx, false, nil, args...); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to install packages"), "prefix", prefix)
	}
	return nil
}

// Remove removes packages from an existing environment.
func (c *CLI) Remove(ctx context.Context, prefix string, packages []string) error {
	if len(packages) == 0 {
		return domain.WithDetail(domain.ErrNoPackages, "operation", "remove")
	}

	args := []string{"remove", "--yes", "--quiet", "--prefix", prefix}
	args = append(args, packages...)

	if _, err := c.call(ctx, false, nil, args...); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove packages"), "prefix", prefix)
	}
	return nil
}

// channelArgs renders --channel flags, plus --override-channels when
// any channel is configured (unless opted out via environment) so the
// configured channels fully replace the user's defaults.
func channelArgs(channels []string) []string {
	var args []string
	for _, channel := range channels {
		args = append(args, "--channel", channel)
	}
	if len(channels) > 0 && os.Getenv(noOverrideChannelsEnv) == "" {
		args = append(args, "--override-channels")
	}
	return args
}
