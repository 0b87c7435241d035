package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"optisheet/internal/config"
	"optisheet/internal/exitcode"
	"optisheet/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "optisheet help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprint(out, commandList(DefaultRegistry))
	return exitcode.Success
}

func commandList(r *Registry) string {
	var b strings.Builder
	b.WriteString("\nCommands:\n")
	for _, cmd := range r.All() {
		name := cmd.Name()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "  %-20s %s\n", name, cmd.Synopsis())
	}
	return b.String()
}

const helpText = `Usage:
  optisheet process [common flags] --source <kind> (--url <url> | --path <file>)
                    --text-column <name> (--instruction-column <name> | --instruction <text>)
                    --result-column <name> [--output <file.csv>]
                    [--api-key <key>] [--credential-file <file>] [--provider openai|gemini]
                    [--model <name>] [--timeout <duration>] [--max-tokens <n>] [--tui]
  optisheet columns [common flags] --source <kind> (--url <url> | --path <file>)
                    [--credential-file <file>]
  optisheet config  [common flags] [--credential-file <file>] [--api-key <key>]
                    [--provider openai|gemini] [--model <name>] [--base-url <url>]
                    [--timeout <duration>] [--max-tokens <n>]
  optisheet help
  optisheet version

Sources:
  sheet      Google spreadsheet URL, results are written live to the sheet
  csv-url    CSV document URL, results are saved to --output
  csv-file   local CSV file, results are saved to --output

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
  --log-json       Print logs as JSON
`
