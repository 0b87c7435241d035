// Package source loads a table from a spreadsheet, a CSV URL or a local CSV
// file.
package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"optisheet/internal/log"
	"optisheet/internal/service"
	"optisheet/internal/table"
)

// Kind is the origin of a table.
type Kind string

const (
	// Sheet is a Google spreadsheet opened with a service account.
	Sheet Kind = "sheet"
	// CSVURL is a CSV document downloaded over HTTP.
	CSVURL Kind = "csv-url"
	// CSVFile is a local CSV file.
	CSVFile Kind = "csv-file"
)

// Kinds lists every supported kind.
var Kinds = []Kind{Sheet, CSVURL, CSVFile}

// ParseKind parses a kind name as given on the command line.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown source: %q (want sheet, csv-url or csv-file)", s)
}

// IsCSV reports whether results for this kind go to a CSV file.
func (k Kind) IsCSV() bool { return k == CSVURL || k == CSVFile }

// Request describes what to load.
type Request struct {
	Kind Kind
	// Location is the spreadsheet URL, CSV URL or file path.
	Location string
	// CredentialFile is the service account key, used by Sheet only.
	CredentialFile string
}

// Loaded is a loaded table. Sheet is set for the Sheet kind only.
type Loaded struct {
	Table *table.Table
	Sheet service.Spreadsheet
}

// Loader loads tables.
type Loader struct {
	svc    service.Service
	logger log.Logger
}

// NewLoader returns a loader using svc for remote sources.
func NewLoader(svc service.Service, logger log.Logger) *Loader {
	if logger == nil {
		logger = log.Noop
	}
	return &Loader{svc: svc, logger: logger.WithValues(log.Kv{"svc": "source.Loader"})}
}

// Load reads the requested table. The first row is always the header row.
func (l *Loader) Load(ctx context.Context, req Request) (Loaded, error) {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return Loaded{}, fmt.Errorf("%s location required", req.Kind)
	}

	var (
		loaded Loaded
		err    error
	)
	switch req.Kind {
	case Sheet:
		loaded, err = l.loadSheet(ctx, location, req.CredentialFile)
	case CSVURL:
		loaded, err = l.loadCSVURL(ctx, location)
	case CSVFile:
		loaded, err = l.loadCSVFile(location)
	default:
		return Loaded{}, fmt.Errorf("unknown source: %q", req.Kind)
	}
	if err != nil {
		return Loaded{}, err
	}

	l.logger.Debugf("loaded %s %s: %d columns, %d rows", req.Kind, location, len(loaded.Table.Headers()), loaded.Table.Len())
	return loaded, nil
}

func (l *Loader) loadSheet(ctx context.Context, sheetURL, credentialFile string) (Loaded, error) {
	if strings.TrimSpace(credentialFile) == "" {
		return Loaded{}, fmt.Errorf("%w: no service account credentials file configured", service.ErrAuth)
	}

	sheet, err := l.svc.OpenSheet(ctx, sheetURL, credentialFile)
	if err != nil {
		return Loaded{}, err
	}

	values, err := sheet.Values(ctx)
	if err != nil {
		return Loaded{}, err
	}
	if len(values) == 0 {
		return Loaded{}, fmt.Errorf("%w: spreadsheet %q has no header row", service.ErrSchema, sheet.Title())
	}

	t, err := table.New(values[0], values[1:])
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{Table: t, Sheet: sheet}, nil
}

func (l *Loader) loadCSVURL(ctx context.Context, csvURL string) (Loaded, error) {
	body, err := l.svc.FetchCSV(ctx, csvURL)
	if err != nil {
		return Loaded{}, err
	}
	t, err := table.ReadCSV(bytes.NewReader(body))
	if err != nil {
		return Loaded{}, fmt.Errorf("csv from %s: %w", csvURL, err)
	}
	return Loaded{Table: t}, nil
}

func (l *Loader) loadCSVFile(path string) (Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return Loaded{}, fmt.Errorf("%w: %v", service.ErrFile, err)
	}
	defer f.Close()

	t, err := table.ReadCSV(f)
	if err != nil {
		return Loaded{}, fmt.Errorf("%s: %w", path, err)
	}
	return Loaded{Table: t}, nil
}
