package domain

import "go.trai.ch/zerr"

var (
	// ErrToolFailed is returned when the external package tool could not
	// be executed or exited non-zero. Metadata carries the exact command
	// line and the tool's own message.
	ErrToolFailed = zerr.New("external tool failed")

	// ErrMalformedToolOutput is returned when the external tool ran but
	// produced output we cannot understand after trying every known
	// response shape. A strong signal the installed tool version is
	// unsupported.
	ErrMalformedToolOutput = zerr.New("could not understand external tool output")

	// ErrEnvironmentExists is returned when creating an environment at a
	// prefix that already exists.
	ErrEnvironmentExists = zerr.New("environment already exists")

	// ErrUnfixableDeviations is returned when reconciliation is requested
	// for an environment whose deviations cannot be fixed in place.
	ErrUnfixableDeviations = zerr.New("environment deviations cannot be fixed")

	// ErrPlatformNotSupported is returned when the env spec's lock set
	// has no package list covering the current platform.
	ErrPlatformNotSupported = zerr.New("env spec does not support platform")

	// ErrEnvironmentMissing is returned when reconciliation finds no
	// environment at the prefix and creating one was not requested.
	ErrEnvironmentMissing = zerr.New("environment does not exist")

	// ErrNoPackages is returned when an operation that requires at least
	// one package spec is invoked with none.
	ErrNoPackages = zerr.New("no package specs given")

	// ErrPipMissing is returned when pip packages must be installed but
	// the environment has no pip executable.
	ErrPipMissing = zerr.New("pip is not installed in the environment")
)

// WithDetail attaches a key-value pair to err while keeping err itself
// in the unwrap chain. zerr.With on a *zerr.Error returns a detached
// copy that no longer matches errors.Is against the original, which
// matters for the sentinels above.
func WithDetail(err error, key string, value any) error {
	return zerr.With(zerr.Wrap(err, ""), key, value)
}
