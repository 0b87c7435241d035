package commands_test

import (
	"context"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optisheet/internal/commands"
	"optisheet/internal/config"
	"optisheet/internal/service"
)

type stubCmd struct {
	name    string
	aliases []string
}

func (c stubCmd) Name() string                   { return c.name }
func (c stubCmd) Aliases() []string              { return c.aliases }
func (c stubCmd) Synopsis() string               { return c.name + " synopsis" }
func (c stubCmd) Usage() string                  { return "optisheet " + c.name }
func (c stubCmd) NeedsService() bool             { return false }
func (c stubCmd) RegisterFlags(fs *flag.FlagSet) {}
func (c stubCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return 0
}

func TestRegistry(t *testing.T) {
	r := commands.NewRegistry()
	require.NoError(t, r.Register(stubCmd{name: "process", aliases: []string{"run"}}))
	require.NoError(t, r.Register(stubCmd{name: "columns", aliases: []string{"cols"}}))

	cmd, ok := r.Find("run")
	require.True(t, ok)
	assert.Equal(t, "process", cmd.Name())

	cmd, ok = r.Find("columns")
	require.True(t, ok)
	assert.Equal(t, "columns", cmd.Name())

	_, ok = r.Find("missing")
	assert.False(t, ok)

	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"columns", "process"}, names)
}

func TestRegistryRejectsClashes(t *testing.T) {
	tests := map[string]stubCmd{
		"A taken name should be rejected.":                    {name: "process"},
		"A name taken as an alias should be rejected.":        {name: "run"},
		"An alias taken as a name should be rejected.":        {name: "other", aliases: []string{"process"}},
		"An alias taken as an alias should be rejected.":      {name: "other", aliases: []string{"run"}},
		"An alias repeating its own name should be rejected.": {name: "other", aliases: []string{"other"}},
	}

	for name, cmd := range tests {
		t.Run(name, func(t *testing.T) {
			r := commands.NewRegistry()
			require.NoError(t, r.Register(stubCmd{name: "process", aliases: []string{"run"}}))

			assert.Error(t, r.Register(cmd))
		})
	}
}

func TestDefaultRegistryResolvesShippedCommands(t *testing.T) {
	for word, name := range map[string]string{
		"process":  "process",
		"run":      "process",
		"columns":  "columns",
		"cols":     "columns",
		"config":   "config",
		"settings": "config",
		"help":     "help",
		"version":  "version",
	} {
		cmd, ok := commands.DefaultRegistry.Find(word)
		if assert.True(t, ok, word) {
			assert.Equal(t, name, cmd.Name(), word)
		}
	}
}
