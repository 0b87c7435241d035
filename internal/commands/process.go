package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"optisheet/internal/completion"
	"optisheet/internal/config"
	"optisheet/internal/exitcode"
	"optisheet/internal/log"
	"optisheet/internal/output"
	"optisheet/internal/processor"
	"optisheet/internal/service"
	"optisheet/internal/sink"
	"optisheet/internal/source"
	"optisheet/internal/ui"
)

func init() {
	Register(&ProcessCmd{})
}

// ProcessCmd implements the process command.
type ProcessCmd struct {
	src sourceFlags

	textColumn        string
	instructionColumn string
	instruction       string
	instructionSet    bool
	resultColumn      string
	output            string

	apiKey         string
	credentialFile string
	provider       string
	model          string
	timeout        time.Duration
	maxTokens      int
	tui            bool
}

func (c *ProcessCmd) Name() string      { return "process" }
func (c *ProcessCmd) Aliases() []string { return []string{"run"} }
func (c *ProcessCmd) Synopsis() string  { return "Ask a question about every row and store the answers" }
func (c *ProcessCmd) Usage() string {
	return "optisheet process --source <kind> (--url <url> | --path <file>) --text-column <name> (--instruction-column <name> | --instruction <text>) --result-column <name> [--output <file.csv>]"
}
func (c *ProcessCmd) NeedsService() bool { return true }

func (c *ProcessCmd) RegisterFlags(fs *flag.FlagSet) {
	c.src.register(fs)
	fs.StringVar(&c.textColumn, "text-column", "", "")
	fs.StringVar(&c.instructionColumn, "instruction-column", "", "")
	c.instructionSet = false
	fs.Func("instruction", "", func(s string) error {
		c.instruction = s
		c.instructionSet = true
		return nil
	})
	fs.StringVar(&c.resultColumn, "result-column", "", "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")

	fs.StringVar(&c.apiKey, "api-key", "", "")
	fs.StringVar(&c.credentialFile, "credential-file", "", "")
	fs.StringVar(&c.provider, "provider", "", "")
	fs.StringVar(&c.model, "model", "", "")
	fs.DurationVar(&c.timeout, "timeout", 0, "")
	fs.IntVar(&c.maxTokens, "max-tokens", 0, "")
	fs.BoolVar(&c.tui, "tui", false, "")
}

func (c *ProcessCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}

	settings, err := c.settings(cfg.Settings)
	if err != nil {
		return usageError(errOut, "%s", err)
	}

	req, err := c.src.request(settings.CredentialsPath)
	if err != nil {
		return usageError(errOut, "%s", err)
	}
	mode, err := c.mode()
	if err != nil {
		return usageError(errOut, "%s", err)
	}
	if strings.TrimSpace(c.textColumn) == "" {
		return usageError(errOut, "--text-column required")
	}
	if strings.TrimSpace(c.resultColumn) == "" {
		return usageError(errOut, "--result-column required")
	}
	if req.Kind.IsCSV() && strings.TrimSpace(c.output) == "" {
		return usageError(errOut, "--output required for source %s", req.Kind)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Noop
	}
	logger = logger.WithValues(log.Kv{"cmd": "process"})

	completer, err := svc.Completer(ctx, service.CompleterOptions{
		Provider: settings.Provider,
		APIKey:   settings.APIKey,
		Model:    settings.Model,
		BaseURL:  settings.BaseURL,
	})
	if err != nil {
		return fail(errOut, err)
	}
	client, err := completion.NewClient(completion.ClientConfig{
		Completer: completer,
		MaxTokens: settings.MaxTokens,
		Timeout:   settings.RequestTimeout,
		Logger:    logger,
	})
	if err != nil {
		return fail(errOut, err)
	}
	proc, err := processor.New(processor.Config{Asker: client, Logger: logger})
	if err != nil {
		return fail(errOut, err)
	}

	loaded, err := source.NewLoader(svc, logger).Load(ctx, req)
	if err != nil {
		return fail(errOut, err)
	}

	job := processor.Job{
		Table:        loaded.Table,
		TextColumn:   c.textColumn,
		Instruction:  mode,
		ResultColumn: c.resultColumn,
	}
	title := req.Location
	dest := ""
	if req.Kind.IsCSV() {
		s, err := sink.NewCSV(c.output, loaded.Table)
		if err != nil {
			return fail(errOut, err)
		}
		job.Sink = s
		dest = s.Path()
	} else {
		job.Sink = sink.NewSheet(loaded.Sheet)
		title = loaded.Sheet.Title()
	}

	var status processor.Status
	if c.tui {
		status, err = c.runTUI(ctx, proc, job, title, errOut)
	} else {
		status, err = proc.Run(ctx, job, c.progressListener(cfg, errOut))
	}
	if err != nil {
		return fail(errOut, err)
	}
	logger.Infof("run %s finished: %d written, %d skipped", status.ID, status.Written, status.Skipped)

	if !cfg.Quiet {
		output.FormatSummary(out, status, dest)
	}
	return exitcode.Success
}

func (c *ProcessCmd) runTUI(ctx context.Context, proc *processor.Processor, job processor.Job, title string, errOut io.Writer) (processor.Status, error) {
	prog := ui.NewProgram(title, job.Table.Len(), errOut)
	run, err := proc.Start(ctx, job, prog.Listener())
	if err != nil {
		return processor.Status{State: processor.NotStarted}, err
	}
	if err := prog.Run(); err != nil {
		// The run keeps going without a view.
		fmt.Fprintf(errOut, "warning: %s\n", err)
	}
	return run.Wait()
}

func (c *ProcessCmd) progressListener(cfg *config.Config, errOut io.Writer) processor.Listener {
	if cfg.Quiet {
		return nil
	}
	return processor.ListenerFuncs{
		Progress: func(s processor.Status) { output.FormatProgress(errOut, s) },
	}
}

// mode returns the instruction mode. Exactly one of --instruction-column and
// --instruction is required; a manual instruction may be empty.
func (c *ProcessCmd) mode() (processor.Mode, error) {
	hasColumn := strings.TrimSpace(c.instructionColumn) != ""
	switch {
	case hasColumn && c.instructionSet:
		return processor.Mode{}, fmt.Errorf("--instruction-column and --instruction are mutually exclusive")
	case hasColumn:
		return processor.PerRow(c.instructionColumn), nil
	case c.instructionSet:
		return processor.Manual(c.instruction), nil
	default:
		return processor.Mode{}, fmt.Errorf("--instruction-column or --instruction required")
	}
}

// settings applies the command flags over the stored settings.
func (c *ProcessCmd) settings(base config.Settings) (config.Settings, error) {
	s := base
	if s.Provider == "" {
		s.Provider = config.ProviderOpenAI
	}
	if c.provider != "" {
		p := strings.ToLower(strings.TrimSpace(c.provider))
		if p != s.Provider {
			s.Provider = p
			s.APIKey = config.EnvAPIKey(p)
			s.Model = ""
			s.BaseURL = ""
		}
	}
	if c.apiKey != "" {
		s.APIKey = c.apiKey
	}
	if c.credentialFile != "" {
		s.CredentialsPath = c.credentialFile
	}
	if c.model != "" {
		s.Model = c.model
	}
	if c.timeout != 0 {
		s.RequestTimeout = c.timeout
	}
	if c.maxTokens != 0 {
		s.MaxTokens = c.maxTokens
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
