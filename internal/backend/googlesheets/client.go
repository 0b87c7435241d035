// Package googlesheets implements service.Spreadsheet using the Google Sheets API.
package googlesheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"optisheet/internal/service"
)

const (
	// DefaultAPITimeout is the timeout for API calls.
	DefaultAPITimeout = 30 * time.Second

	// valueInputOption makes the API parse values as if typed by a user.
	valueInputOption = "USER_ENTERED"
)

// OAuth scopes for service account access.
var scopes = []string{
	sheets.SpreadsheetsScope,
	"https://www.googleapis.com/auth/drive.file",
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// Client opens spreadsheets through the Sheets API.
type Client struct {
	svc     *sheets.Service
	timeout time.Duration
}

// New creates a new Sheets client authenticated with the service account
// key in credentialFile.
func New(ctx context.Context, credentialFile string, timeout time.Duration) (*Client, error) {
	keyJSON, err := os.ReadFile(credentialFile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read credentials file: %v", service.ErrAuth, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, keyJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials file %s: %v", service.ErrAuth, credentialFile, err)
	}

	// Create HTTP client with a token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, creds.TokenSource)

	return NewWithHTTPClient(ctx, httpClient, timeout)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Extra options, such as option.WithEndpoint, are passed to the Sheets service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, timeout time.Duration, opts ...option.ClientOption) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{svc: svc, timeout: timeout}, nil
}

// Open opens the spreadsheet at sheetURL and selects its first tab.
func (c *Client) Open(ctx context.Context, sheetURL string) (*Spreadsheet, error) {
	id, err := SpreadsheetID(sheetURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ss, err := c.svc.Spreadsheets.Get(id).
		Fields("properties.title", "sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("%w: spreadsheet %s has no sheets", service.ErrNotFound, id)
	}

	title := ""
	if ss.Properties != nil {
		title = ss.Properties.Title
	}
	return &Spreadsheet{
		client: c,
		id:     id,
		title:  title,
		tab:    ss.Sheets[0].Properties.Title,
	}, nil
}

// Spreadsheet implements service.Spreadsheet on the first tab of a spreadsheet.
type Spreadsheet struct {
	client *Client
	id     string
	title  string
	tab    string
}

// Title returns the spreadsheet title.
func (s *Spreadsheet) Title() string { return s.title }

// Values returns every row of the tab as strings.
func (s *Spreadsheet) Values(ctx context.Context) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.client.timeout)
	defer cancel()

	resp, err := s.client.svc.Spreadsheets.Values.Get(s.id, quoteTab(s.tab)).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		row := make([]string, len(r))
		for i, v := range r {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpdateCell writes one cell of the tab.
func (s *Spreadsheet) UpdateCell(ctx context.Context, cell service.Cell, value string) error {
	a1, err := A1(s.tab, cell)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.client.timeout)
	defer cancel()

	_, err = s.client.svc.Spreadsheets.Values.Update(s.id, a1, &sheets.ValueRange{
		Range:  a1,
		Values: [][]interface{}{{value}},
	}).ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// SpreadsheetID extracts the spreadsheet ID from a Sheets URL.
func SpreadsheetID(sheetURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(sheetURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid spreadsheet url: %s", service.ErrNotFound, sheetURL)
	}
	m := spreadsheetIDPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return "", fmt.Errorf("%w: no spreadsheet id in url: %s", service.ErrNotFound, sheetURL)
	}
	return m[1], nil
}

// A1 returns the A1 notation of a cell on tab.
func A1(tab string, cell service.Cell) (string, error) {
	if cell.Row < 1 || cell.Col < 1 {
		return "", fmt.Errorf("invalid cell: row %d, column %d", cell.Row, cell.Col)
	}
	return fmt.Sprintf("%s!%s%d", quoteTab(tab), ColumnLetters(cell.Col), cell.Row), nil
}

// ColumnLetters converts a 1-based column number to its letters (1 -> A, 27 -> AA).
func ColumnLetters(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// wrapError maps API errors to service error kinds.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrNetwork)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: access denied (share the sheet with the service account): %v", service.ErrAuth, apiErr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: spreadsheet not found", service.ErrNotFound)
		default:
			return fmt.Errorf("%w: sheets api: %v", service.ErrNetwork, err)
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: token request rejected: %v", service.ErrAuth, err)
	}

	return fmt.Errorf("%w: %v", service.ErrNetwork, err)
}
