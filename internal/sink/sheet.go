// Package sink stores run results: live in a spreadsheet or in a CSV file
// written once the run ends.
package sink

import (
	"context"
	"fmt"

	"optisheet/internal/processor"
	"optisheet/internal/service"
	"optisheet/internal/table"
)

// Sheet writes every result straight into the spreadsheet.
type Sheet struct {
	sheet service.Spreadsheet
}

// NewSheet returns a sink writing to sheet.
func NewSheet(sheet service.Spreadsheet) *Sheet {
	return &Sheet{sheet: sheet}
}

// Write updates the result cell of job.
func (s *Sheet) Write(ctx context.Context, job processor.RowJob, value string) error {
	if err := s.sheet.UpdateCell(ctx, job.Cell, value); err != nil {
		return fmt.Errorf("update cell R%dC%d: %w", job.Cell.Row, job.Cell.Col, err)
	}
	return nil
}

// Finalize is a no-op: cells were written as the run went.
func (s *Sheet) Finalize(ctx context.Context, t *table.Table) error {
	return nil
}
