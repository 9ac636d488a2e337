// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown item, invalid input).
	UserError = 1

	// AuthError indicates a missing or rejected session, or a config error.
	AuthError = 2

	// BackendError indicates an API, network or malformed-response error.
	BackendError = 3
)
