package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"optisheet/internal/processor"
	"optisheet/internal/service"
	"optisheet/internal/table"
)

// CSV collects results in the table and saves it as CSV when the run ends.
type CSV struct {
	path  string
	table *table.Table
}

// NewCSV returns a sink recording results in t and saving it to path. The
// path is required and gets a .csv extension when it has none.
func NewCSV(path string, t *table.Table) (*CSV, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: no output location selected", service.ErrFile)
	}
	if t == nil {
		return nil, fmt.Errorf("table is required")
	}
	return &CSV{path: OutputPath(path), table: t}, nil
}

// OutputPath appends .csv to path when it has no extension.
func OutputPath(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".csv"
	}
	return path
}

// Path returns the destination path.
func (c *CSV) Path() string { return c.path }

// Write stores value in the row's result column.
func (c *CSV) Write(ctx context.Context, job processor.RowJob, value string) error {
	return c.table.Set(job.Index, job.Column, value)
}

// Finalize writes t to the destination path through a temporary file, so a
// failed write leaves any existing file untouched.
func (c *CSV) Finalize(ctx context.Context, t *table.Table) error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: cannot write %s: %v", service.ErrFile, c.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := table.WriteCSV(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: cannot write %s: %v", service.ErrFile, c.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: cannot write %s: %v", service.ErrFile, c.path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: cannot write %s: %v", service.ErrFile, c.path, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("%w: cannot write %s: %v", service.ErrFile, c.path, err)
	}
	return nil
}
