package ports

import "context"

// RunRequest describes one external command invocation.
type RunRequest struct {
	// Command is the full argv, Command[0] being the executable.
	Command []string

	// ExtraEnv holds additional "KEY=VALUE" entries appended to the
	// inherited process environment.
	ExtraEnv []string

	// JSONMode indicates the command was asked for JSON output; on a
	// non-zero exit the runner then tries to extract a structured
	// message from stdout for a better error string.
	JSONMode bool

	// OnStdout and OnStderr, when non-nil, receive output line by line
	// as it arrives, so interactive progress is visible live. Lines are
	// delivered without their trailing newline.
	OnStdout func(line string)
	OnStderr func(line string)
}

// RunResult carries the fully buffered output of a completed command.
type RunResult struct {
	Stdout string
	Stderr string
}

// ProcessRunner runs external commands, streaming their output.
//
// Failures are classified via domain.ErrToolFailed metadata: an exec
// failure (binary not found), a non-zero exit, and, for JSON-mode
// callers, syntactically invalid output are distinguishable by the
// attached metadata.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type ProcessRunner interface {
	// Run executes the command and blocks until it completes. There is
	// no timeout: a hang in the external tool hangs the caller, whose
	// supervision layer owns recovery.
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}
