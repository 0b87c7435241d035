package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"optisheet/internal/exitcode"
	"optisheet/internal/service"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitcode.Success},
		{fmt.Errorf("open sheet: %w", service.ErrAuth), exitcode.AuthError},
		{fmt.Errorf("read: %w", service.ErrFile), exitcode.FileError},
		{fmt.Errorf("column: %w", service.ErrSchema), exitcode.UserError},
		{fmt.Errorf("sheet: %w", service.ErrNotFound), exitcode.UserError},
		{fmt.Errorf("get: %w", service.ErrNetwork), exitcode.BackendError},
		{errors.New("boom"), exitcode.BackendError},
	}

	for _, tt := range tests {
		if got := exitcode.FromError(tt.err); got != tt.want {
			t.Errorf("FromError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
