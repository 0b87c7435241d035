package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optisheet/internal/cli"
	"optisheet/internal/commands"
	"optisheet/internal/config"
	"optisheet/internal/exitcode"
	"optisheet/internal/service"
	"optisheet/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"unknowncmd"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_NoArgsPrintsHelp(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestDispatcher_HelpCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"help"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr.String() != "" {
		t.Errorf("expected no stderr, got %q", stderr.String())
	}
	if !bytes.Contains(stdout.Bytes(), []byte("Usage:")) {
		t.Error("expected help output to contain 'Usage:'")
	}
	if !bytes.Contains(stdout.Bytes(), []byte("List the columns of a source")) {
		t.Error("expected help output to list the columns command")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"version"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr.String() != "" {
		t.Errorf("expected no stderr, got %q", stderr.String())
	}
	if stdout.String() != "optisheet 0.1.0\n" {
		t.Errorf("expected 'optisheet 0.1.0\\n', got %q", stdout.String())
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"help", "--unknown"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"columns", "--source"}, &stdout, &stderr)

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: flag needs an argument: -source\n", stderr.String())
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, fmt.Errorf("%w: bad key", service.ErrAuth)
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"columns", "--config", t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, exitcode.AuthError, code)
	assert.True(t, strings.HasPrefix(stderr.String(), "error: "))
}

func TestDispatcher_ProcessCSVEndToEnd(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Completion.AnswerWhen("spam", "Yes")
	in := testutil.WriteFile(t, "reviews.csv", "text,result\nBuy now,\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{
		"process", "--config", t.TempDir(), "--api-key", "k",
		"--source", "csv-file", "--path", in,
		"--text-column", "text", "--instruction", "Is this spam",
		"--result-column", "result", "--output", out,
	}, &stdout, &stderr)

	require.Equal(t, exitcode.Success, code, stderr.String())
	assert.Equal(t, "ok: 1 row, 1 written, 0 skipped\nData saved to "+out+"\n", stdout.String())
	assert.Equal(t, "k", svc.LastCompleterOptions.APIKey)
	assert.Equal(t, [][]string{{"text", "result"}, {"Buy now", "Yes"}}, testutil.ReadCSVFile(t, out).Records())
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	var buf bytes.Buffer
	logger := cli.NewLogger(&buf, true, true)
	logger.Debugf("hello %s", "world")

	assert.Contains(t, buf.String(), `"msg":"hello world"`)
	assert.Contains(t, buf.String(), `"level":"debug"`)

	buf.Reset()
	logger = cli.NewLogger(&buf, false, false)
	logger.Debugf("hidden")
	logger.Warningf("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDispatcher_NoBackend(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"columns", "--config", t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: backend error: no backend configured\n", stderr.String())
}
