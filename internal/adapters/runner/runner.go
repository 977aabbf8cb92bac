// Package runner provides the streaming subprocess adapter.
package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Runner implements ports.ProcessRunner using os/exec. Each invocation
// uses one reader goroutine per output stream so that interleaved
// output is captured live without deadlocking on a full pipe buffer;
// a shared mutex keeps callback delivery line-atomic.
type Runner struct {
	logger ports.Logger
}

// New creates a new Runner.
func New(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

var _ ports.ProcessRunner = (*Runner)(nil)

// Run executes the command, streaming output to the request callbacks
// as it arrives and returning the fully buffered text. See
// ports.ProcessRunner for the failure classification contract.
func (r *Runner) Run(ctx context.Context, req ports.RunRequest) (ports.RunResult, error) {
	if len(req.Command) == 0 {
		return ports.RunResult{}, zerr.New("empty command")
	}
	commandLine := strings.Join(req.Command, " ")

	cmd := exec.CommandContext(ctx, req.Command[0], req.Command[1:]...) //nolint:gosec // command is constructed by trusted adapters
	cmd.Env = append(os.Environ(), req.ExtraEnv...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return ports.RunResult{}, zerr.With(zerr.Wrap(err, "failed to open stdout pipe"), "command", commandLine)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return ports.RunResult{}, zerr.With(zerr.Wrap(err, "failed to open stderr pipe"), "command", commandLine)
	}

	if err := cmd.Start(); err != nil {
		execErr := domain.WithDetail(domain.ErrToolFailed, "command", commandLine)
		execErr = zerr.With(execErr, "kind", "exec")
		return ports.RunResult{}, zerr.With(execErr, "message", err.Error())
	}

	var outBuf, errBuf strings.Builder
	var deliverMu sync.Mutex
	deliver := func(callback func(string), line string) {
		if callback == nil {
			return
		}
		deliverMu.Lock()
		defer deliverMu.Unlock()
		callback(line)
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		return readLines(stdout, &outBuf, func(line string) { deliver(req.OnStdout, line) })
	})
	g.Go(func() error {
		return readLines(stderr, &errBuf, func(line string) { deliver(req.OnStderr, line) })
	})

	readErr := g.Wait()
	waitErr := cmd.Wait()

	result := ports.RunResult{
		Stdout: outBuf.String(),
		Stderr: errBuf.String(),
	}

	if waitErr != nil {
		var exitCode int
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}

		message := strings.TrimSpace(result.Stderr)
		runErr := domain.WithDetail(domain.ErrToolFailed, "command", commandLine)
		runErr = zerr.With(runErr, "kind", "exit")
		runErr = zerr.With(runErr, "exit_code", exitCode)
		if req.JSONMode {
			// a structured message from the tool beats raw stderr, but
			// a parse failure here only downgrades the error text
			if structured, body := extractJSONMessage(result.Stdout); structured != "" {
				message = structured
				runErr = zerr.With(runErr, "json", body)
			}
		}
		return result, zerr.With(runErr, "message", message)
	}

	if readErr != nil {
		streamErr := zerr.Wrap(readErr, "failed reading tool output")
		return result, zerr.With(streamErr, "command", commandLine)
	}

	// tools sometimes warn on stderr while still exiting zero; surface
	// those lines instead of dropping them
	if r.logger != nil {
		for _, line := range strings.Split(strings.TrimSpace(result.Stderr), "\n") {
			if line != "" {
				r.logger.Warn(req.Command[0] + ": " + line)
			}
		}
	}

	return result, nil
}

// readLines streams one pipe line by line into buf and the callback.
func readLines(pipe io.Reader, buf *strings.Builder, callback func(string)) error {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		buf.WriteString(line)
		buf.WriteString("\n")
		callback(line)
	}
	return scanner.Err()
}

// extractJSONMessage pulls a "message" or "error" field out of a JSON
// object on stdout, returning ("", nil) when there is none.
func extractJSONMessage(stdout string) (string, map[string]any) {
	var body map[string]any
	if err := json.Unmarshal([]byte(stdout), &body); err != nil {
		return "", nil
	}
	for _, key := range []string{"message", "error"} {
		if msg, ok := body[key].(string); ok && msg != "" {
			return msg, body
		}
	}
	return "", body
}
