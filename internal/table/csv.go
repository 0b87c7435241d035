package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"optisheet/internal/service"
)

const utf8BOM = "\ufeff"

// ReadCSV decodes a comma-separated document whose first record is the
// header row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed csv: %v", service.ErrFile, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: csv has no header row", service.ErrFile)
	}

	headers := records[0]
	// Drop a UTF-8 byte order mark left by spreadsheet exports.
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return New(headers, records[1:])
}

// WriteCSV encodes the header row followed by every data row.
func WriteCSV(w io.Writer, t *Table) error {
	if t == nil {
		return errors.New("nil table")
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("%w: write csv: %v", service.ErrFile, err)
	}
	return nil
}
