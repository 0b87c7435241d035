// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"optisheet/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, missing or duplicate columns).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3

	// FileError indicates a local file could not be read or written.
	FileError = 4
)

// FromError maps an error kind to an exit code.
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrAuth):
		return AuthError
	case errors.Is(err, service.ErrFile):
		return FileError
	case errors.Is(err, service.ErrSchema), errors.Is(err, service.ErrNotFound):
		return UserError
	default:
		return BackendError
	}
}
