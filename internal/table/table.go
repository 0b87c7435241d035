// Package table holds the in-memory tabular data a run works on.
package table

import (
	"fmt"
	"strings"

	"optisheet/internal/service"
)

// Table is an ordered set of rows with uniquely named columns.
// Every row has exactly one cell per header.
type Table struct {
	// headers are the column names used for lookups.
	headers []string
	// raw is the header row as it was read; it is written back unchanged.
	raw   []string
	index map[string]int
	rows  [][]string
}

// New builds a table from a header row and data rows.
// A blank header cell is named "Unnamed: <i>" after its 0-based position,
// the way spreadsheet exports with an index column are usually read. Names
// must be unique. Rows shorter than the header row are padded with empty
// cells; longer rows are rejected.
func New(headers []string, rows [][]string) (*Table, error) {
	names := make([]string, len(headers))
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			h = unnamedColumn(i)
		}
		if _, dup := index[h]; dup {
			return nil, fmt.Errorf("%w: duplicate column name: %s", service.ErrSchema, h)
		}
		index[h] = i
		names[i] = h
	}

	t := &Table{
		headers: names,
		raw:     append([]string(nil), headers...),
		index:   index,
		rows:    make([][]string, 0, len(rows)),
	}
	for i, r := range rows {
		if len(r) > len(headers) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", service.ErrSchema, i+1, len(r), len(headers))
		}
		row := make([]string, len(headers))
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// unnamedColumn returns the name given to a blank header cell at the 0-based
// position i.
func unnamedColumn(i int) string {
	return fmt.Sprintf("Unnamed: %d", i)
}

// Headers returns the column names in display order.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// ColumnIndex returns the 0-based position of a column.
func (t *Table) ColumnIndex(column string) (int, error) {
	i, ok := t.index[column]
	if !ok {
		return 0, fmt.Errorf("%w: column not found: %s", service.ErrSchema, column)
	}
	return i, nil
}

// Value returns the cell at row (0-based) in the named column.
func (t *Table) Value(row int, column string) (string, error) {
	col, err := t.ColumnIndex(column)
	if err != nil {
		return "", err
	}
	if row < 0 || row >= len(t.rows) {
		return "", fmt.Errorf("row out of range: %d", row)
	}
	return t.rows[row][col], nil
}

// Set replaces the cell at row (0-based) in the named column.
func (t *Table) Set(row int, column, value string) error {
	col, err := t.ColumnIndex(column)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row out of range: %d", row)
	}
	t.rows[row][col] = value
	return nil
}

// Records returns a copy of the header row as read followed by all data rows.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.rows)+1)
	records = append(records, append([]string(nil), t.raw...))
	for _, r := range t.rows {
		records = append(records, append([]string(nil), r...))
	}
	return records
}
