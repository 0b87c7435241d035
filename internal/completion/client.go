package completion

import (
	"context"
	"fmt"
	"time"

	"optisheet/internal/log"
	"optisheet/internal/service"
)

const (
	// SystemPrompt is sent as the system message of every request.
	SystemPrompt = "You are a helpful assistant."

	// DefaultMaxTokens caps the answer length.
	DefaultMaxTokens = 10

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

// ClientConfig is the configuration of Client.
type ClientConfig struct {
	Completer service.Completer
	MaxTokens int
	Timeout   time.Duration
	Logger    log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.Completer == nil {
		return fmt.Errorf("completer is required")
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "completion.Client"})
	return nil
}

// Client turns a text and an instruction into a Verdict.
// It holds no state between calls.
type Client struct {
	completer service.Completer
	maxTokens int
	timeout   time.Duration
	logger    log.Logger
}

// NewClient returns a new completion client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Client{
		completer: cfg.Completer,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}, nil
}

// BuildPrompt embeds the instruction and the text in a yes/no question.
func BuildPrompt(instruction, text string) string {
	return fmt.Sprintf("%s: '%s'? (Answer with Yes or No)", instruction, text)
}

// Ask sends one request. Errors never escape: they come back as a failed
// Verdict so the caller can carry on with the next row.
func (c *Client) Ask(ctx context.Context, text, instruction string) Verdict {
	logger := c.logger.WithCtxValues(ctx)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.completer.Complete(ctx, service.CompletionRequest{
		System:    SystemPrompt,
		Prompt:    BuildPrompt(instruction, text),
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		logger.Debugf("completion failed after %v: %v", time.Since(start), err)
		return Failure(err.Error())
	}

	v := Answer(out)
	logger.Debugf("completion finished in %v: %q", time.Since(start), v.String())
	return v
}
