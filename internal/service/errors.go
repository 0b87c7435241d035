package service

import "errors"

// Error kinds. Callers wrap these with context and test with errors.Is.
var (
	// ErrAuth is returned when a credential is missing, invalid or rejected.
	ErrAuth = errors.New("auth error")

	// ErrNotFound is returned when a spreadsheet or URL target does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned on transport failures and non-success HTTP statuses.
	ErrNetwork = errors.New("network error")

	// ErrFile is returned when a local file cannot be read, parsed or written.
	ErrFile = errors.New("file error")

	// ErrSchema is returned for missing or duplicate columns.
	ErrSchema = errors.New("schema error")

	// ErrAPI is returned by completion backends for a failed request.
	ErrAPI = errors.New("api error")

	// ErrAlreadyRunning is returned when a run is started while another is active.
	ErrAlreadyRunning = errors.New("a processing run is already active")
)
