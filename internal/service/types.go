package service

// CompletionRequest is a single prompt sent to a completion backend.
type CompletionRequest struct {
	// System is the system instruction. Backends may ignore it.
	System string

	// Prompt is the user prompt.
	Prompt string

	// MaxTokens caps the generated output.
	MaxTokens int
}

// Cell addresses a single spreadsheet cell. Both coordinates are 1-based.
type Cell struct {
	Row int
	Col int
}
