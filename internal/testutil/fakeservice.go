// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"optisheet/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	sheets map[string]*FakeSheet // url -> sheet
	csvs   map[string][]byte     // url -> body

	// Completion is returned by Completer.
	Completion *FakeCompleter

	// LastCompleterOptions records the options of the last Completer call.
	LastCompleterOptions service.CompleterOptions

	// Error injection for testing
	OpenSheetErr error
	FetchCSVErr  error
	CompleterErr error
}

// NewFakeService creates a new empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		sheets:     make(map[string]*FakeSheet),
		csvs:       make(map[string][]byte),
		Completion: NewFakeCompleter(),
	}
}

// AddSheet registers a spreadsheet under url.
func (f *FakeService) AddSheet(url string, sheet *FakeSheet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheets[url] = sheet
}

// AddCSV registers a CSV document under url.
func (f *FakeService) AddCSV(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.csvs[url] = []byte(body)
}

// OpenSheet implements service.Service.
func (f *FakeService) OpenSheet(ctx context.Context, sheetURL, credentialFile string) (service.Spreadsheet, error) {
	if f.OpenSheetErr != nil {
		return nil, f.OpenSheetErr
	}
	if credentialFile == "" {
		return nil, fmt.Errorf("%w: no credentials file", service.ErrAuth)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	sheet, ok := f.sheets[sheetURL]
	if !ok {
		return nil, fmt.Errorf("%w: spreadsheet %s", service.ErrNotFound, sheetURL)
	}
	return sheet, nil
}

// FetchCSV implements service.Service.
func (f *FakeService) FetchCSV(ctx context.Context, csvURL string) ([]byte, error) {
	if f.FetchCSVErr != nil {
		return nil, f.FetchCSVErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	body, ok := f.csvs[csvURL]
	if !ok {
		return nil, fmt.Errorf("%w: GET %s: 404 Not Found", service.ErrNetwork, csvURL)
	}
	return append([]byte(nil), body...), nil
}

// Completer implements service.Service.
func (f *FakeService) Completer(ctx context.Context, opts service.CompleterOptions) (service.Completer, error) {
	f.mu.Lock()
	f.LastCompleterOptions = opts
	f.mu.Unlock()
	if f.CompleterErr != nil {
		return nil, f.CompleterErr
	}
	return f.Completion, nil
}

// FakeSheet is an in-memory service.Spreadsheet. Cells are addressed the way
// the Sheets API addresses them: 1-based rows including the header row.
type FakeSheet struct {
	mu     sync.RWMutex
	title  string
	values [][]string

	// Updates records every UpdateCell call in order.
	Updates []CellUpdate

	// Error injection for testing
	ValuesErr error
	// UpdateErrAfter fails every UpdateCell once this many updates succeeded.
	// Negative disables the failure.
	UpdateErrAfter int
	UpdateErr      error
}

// CellUpdate is one recorded UpdateCell call.
type CellUpdate struct {
	Cell  service.Cell
	Value string
}

// NewFakeSheet creates a sheet whose first row is the header row.
func NewFakeSheet(title string, values [][]string) *FakeSheet {
	cp := make([][]string, len(values))
	for i, r := range values {
		cp[i] = append([]string(nil), r...)
	}
	return &FakeSheet{title: title, values: cp, UpdateErrAfter: -1}
}

// Title implements service.Spreadsheet.
func (s *FakeSheet) Title() string { return s.title }

// Values implements service.Spreadsheet.
func (s *FakeSheet) Values(ctx context.Context) ([][]string, error) {
	if s.ValuesErr != nil {
		return nil, s.ValuesErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]string, len(s.values))
	for i, r := range s.values {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

// UpdateCell implements service.Spreadsheet.
func (s *FakeSheet) UpdateCell(ctx context.Context, cell service.Cell, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErrAfter >= 0 && len(s.Updates) >= s.UpdateErrAfter {
		return s.UpdateErr
	}
	if cell.Row < 1 || cell.Col < 1 {
		return fmt.Errorf("invalid cell %v", cell)
	}
	for len(s.values) < cell.Row {
		s.values = append(s.values, nil)
	}
	row := s.values[cell.Row-1]
	for len(row) < cell.Col {
		row = append(row, "")
	}
	row[cell.Col-1] = value
	s.values[cell.Row-1] = row
	s.Updates = append(s.Updates, CellUpdate{Cell: cell, Value: value})
	return nil
}

// Cell returns the value at a 1-based coordinate.
func (s *FakeSheet) Cell(row, col int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if row < 1 || row > len(s.values) || col < 1 || col > len(s.values[row-1]) {
		return ""
	}
	return s.values[row-1][col-1]
}

// FakeCompleter is a scripted service.Completer.
// Answers are looked up by a substring of the prompt; unmatched prompts get
// Default.
type FakeCompleter struct {
	mu       sync.Mutex
	rules    []completerRule
	requests []service.CompletionRequest

	// Default is returned when no rule matches.
	Default string

	// Block, when set, is waited on before each call returns.
	Block chan struct{}
}

type completerRule struct {
	contains string
	answer   string
	err      error
}

// NewFakeCompleter creates a completer answering "Yes" by default.
func NewFakeCompleter() *FakeCompleter {
	return &FakeCompleter{Default: "Yes"}
}

// AnswerWhen returns answer for prompts containing substr.
func (c *FakeCompleter) AnswerWhen(substr, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = append(c.rules, completerRule{contains: substr, answer: answer})
}

// FailWhen returns err for prompts containing substr.
func (c *FakeCompleter) FailWhen(substr string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = append(c.rules, completerRule{contains: substr, err: err})
}

// Requests returns every request received so far.
func (c *FakeCompleter) Requests() []service.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]service.CompletionRequest(nil), c.requests...)
}

// Complete implements service.Completer.
func (c *FakeCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	rules := append([]completerRule(nil), c.rules...)
	block := c.Block
	c.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	for _, r := range rules {
		if strings.Contains(req.Prompt, r.contains) {
			if r.err != nil {
				return "", r.err
			}
			return r.answer, nil
		}
	}
	return c.Default, nil
}
