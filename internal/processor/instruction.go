package processor

import (
	"fmt"

	"optisheet/internal/table"
)

// Mode selects where a row's instruction comes from.
type Mode struct {
	perRow bool
	value  string
}

// Manual uses the same fixed instruction for every row. Empty text is
// allowed; it only makes for a poor prompt.
func Manual(text string) Mode {
	return Mode{value: text}
}

// PerRow takes each row's instruction from the named column.
func PerRow(column string) Mode {
	return Mode{perRow: true, value: column}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m.perRow {
		return fmt.Sprintf("column %q", m.value)
	}
	return fmt.Sprintf("manual %q", m.value)
}

// Validate checks that a per-row column exists in t.
func (m Mode) Validate(t *table.Table) error {
	if !m.perRow {
		return nil
	}
	_, err := t.ColumnIndex(m.value)
	if err != nil {
		return fmt.Errorf("instruction %w", err)
	}
	return nil
}

// Resolve returns the instruction for a row.
func Resolve(t *table.Table, row int, m Mode) (string, error) {
	if !m.perRow {
		return m.value, nil
	}
	v, err := t.Value(row, m.value)
	if err != nil {
		return "", fmt.Errorf("instruction %w", err)
	}
	return v, nil
}
