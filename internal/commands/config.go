package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"optisheet/internal/config"
	"optisheet/internal/exitcode"
	"optisheet/internal/output"
	"optisheet/internal/service"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd implements the config command. Without flags it prints the
// settings; with flags it updates and saves them.
type ConfigCmd struct {
	credentialFile string
	apiKey         string
	provider       string
	model          string
	baseURL        string
	timeout        time.Duration
	maxTokens      int

	set map[string]bool
}

func (c *ConfigCmd) Name() string      { return "config" }
func (c *ConfigCmd) Aliases() []string { return []string{"settings"} }
func (c *ConfigCmd) Synopsis() string  { return "Show or change the stored settings" }
func (c *ConfigCmd) Usage() string {
	return "optisheet config [--credential-file <file>] [--api-key <key>] [--provider openai|gemini] [--model <name>] [--base-url <url>] [--timeout <duration>] [--max-tokens <n>]"
}
func (c *ConfigCmd) NeedsService() bool { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {
	c.set = make(map[string]bool)
	c.stringFlag(fs, "credential-file", &c.credentialFile)
	c.stringFlag(fs, "api-key", &c.apiKey)
	c.stringFlag(fs, "provider", &c.provider)
	c.stringFlag(fs, "model", &c.model)
	c.stringFlag(fs, "base-url", &c.baseURL)
	fs.Func("timeout", "", func(s string) error {
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		c.timeout = d
		c.set["timeout"] = true
		return nil
	})
	fs.Func("max-tokens", "", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		c.maxTokens = n
		c.set["max-tokens"] = true
		return nil
	})
}

// stringFlag registers a string flag that records whether it was given, so an
// empty value can clear a setting.
func (c *ConfigCmd) stringFlag(fs *flag.FlagSet, name string, p *string) {
	fs.Func(name, "", func(s string) error {
		*p = s
		c.set[name] = true
		return nil
	})
}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}

	if len(c.set) == 0 {
		c.show(cfg, out)
		return exitcode.Success
	}

	// Start from the file, not from the environment overrides.
	s, err := config.LoadSettings(cfg.SettingsPath())
	if err != nil {
		return usageError(errOut, "%s", err)
	}
	c.apply(s)
	if err := s.Validate(); err != nil {
		return usageError(errOut, "%s", err)
	}
	if err := cfg.EnsureDir(); err != nil {
		return fail(errOut, fmt.Errorf("%w: %v", service.ErrFile, err))
	}
	if err := s.Save(cfg.SettingsPath()); err != nil {
		return fail(errOut, fmt.Errorf("%w: %v", service.ErrFile, err))
	}
	cfg.Settings = *s

	if !cfg.Quiet {
		fmt.Fprintf(out, "Settings saved to %s\n", cfg.SettingsPath())
	}
	return exitcode.Success
}

func (c *ConfigCmd) apply(s *config.Settings) {
	if c.set["credential-file"] {
		s.CredentialsPath = strings.TrimSpace(c.credentialFile)
	}
	if c.set["api-key"] {
		s.APIKey = strings.TrimSpace(c.apiKey)
	}
	if c.set["provider"] {
		s.Provider = strings.ToLower(strings.TrimSpace(c.provider))
	}
	if c.set["model"] {
		s.Model = strings.TrimSpace(c.model)
	}
	if c.set["base-url"] {
		s.BaseURL = strings.TrimSpace(c.baseURL)
	}
	if c.set["timeout"] {
		s.RequestTimeout = c.timeout
	}
	if c.set["max-tokens"] {
		s.MaxTokens = c.maxTokens
	}
}

func (c *ConfigCmd) show(cfg *config.Config, out io.Writer) {
	s := cfg.Settings
	file := cfg.SettingsPath()
	if !cfg.HasSettings() {
		file += " (not created, using defaults)"
	}
	output.FormatSetting(out, "config_file", file)
	output.FormatSetting(out, "credentials_path", s.CredentialsPath)
	output.FormatSetting(out, "api_key", s.MaskedAPIKey())
	output.FormatSetting(out, "provider", s.Provider)
	output.FormatSetting(out, "model", s.Model)
	output.FormatSetting(out, "base_url", s.BaseURL)
	output.FormatSetting(out, "request_timeout", s.RequestTimeout.String())
	output.FormatSetting(out, "max_tokens", strconv.Itoa(s.MaxTokens))
}
