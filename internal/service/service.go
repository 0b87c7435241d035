// Package service defines the backend-agnostic interfaces for spreadsheet,
// CSV and completion operations.
package service

import "context"

// Service defines the remote collaborators used by commands.
// All Google Sheets, HTTP and model API calls go through this interface.
// Commands never import an SDK directly.
type Service interface {
	// OpenSheet opens the spreadsheet at sheetURL using the service account
	// key in credentialFile.
	OpenSheet(ctx context.Context, sheetURL, credentialFile string) (Spreadsheet, error)

	// FetchCSV downloads the CSV document at csvURL.
	FetchCSV(ctx context.Context, csvURL string) ([]byte, error)

	// Completer returns a completion backend for the given settings.
	Completer(ctx context.Context, opts CompleterOptions) (Completer, error)
}

// CompleterOptions selects and configures a completion backend.
type CompleterOptions struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// Spreadsheet is an open handle on the first tab of a spreadsheet.
type Spreadsheet interface {
	// Title returns the spreadsheet title.
	Title() string

	// Values returns every row of the first tab, header row included.
	// Rows may be shorter than the header row.
	Values(ctx context.Context) ([][]string, error)

	// UpdateCell writes a single cell of the first tab.
	UpdateCell(ctx context.Context, cell Cell, value string) error
}

// Completer sends one prompt to a text-completion endpoint.
type Completer interface {
	// Complete returns the generated text for req.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
