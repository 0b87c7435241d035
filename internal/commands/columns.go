package commands

import (
	"context"
	"flag"
	"io"

	"optisheet/internal/config"
	"optisheet/internal/exitcode"
	"optisheet/internal/output"
	"optisheet/internal/service"
	"optisheet/internal/source"
)

func init() {
	Register(&ColumnsCmd{})
}

// ColumnsCmd implements the columns command. It loads a source and lists the
// column names that process accepts.
type ColumnsCmd struct {
	src            sourceFlags
	credentialFile string
}

func (c *ColumnsCmd) Name() string      { return "columns" }
func (c *ColumnsCmd) Aliases() []string { return []string{"cols"} }
func (c *ColumnsCmd) Synopsis() string  { return "List the columns of a source" }
func (c *ColumnsCmd) Usage() string {
	return "optisheet columns --source <kind> (--url <url> | --path <file>) [--credential-file <file>]"
}
func (c *ColumnsCmd) NeedsService() bool { return true }

func (c *ColumnsCmd) RegisterFlags(fs *flag.FlagSet) {
	c.src.register(fs)
	fs.StringVar(&c.credentialFile, "credential-file", "", "")
}

func (c *ColumnsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}

	credentialFile := cfg.Settings.CredentialsPath
	if c.credentialFile != "" {
		credentialFile = c.credentialFile
	}
	req, err := c.src.request(credentialFile)
	if err != nil {
		return usageError(errOut, "%s", err)
	}

	loaded, err := source.NewLoader(svc, cfg.Logger).Load(ctx, req)
	if err != nil {
		return fail(errOut, err)
	}

	title := ""
	if loaded.Sheet != nil {
		title = loaded.Sheet.Title()
	}
	output.FormatColumns(out, title, loaded.Table.Headers(), loaded.Table.Len())
	return exitcode.Success
}
