// Package backend wires the remote APIs into a service.Service.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"optisheet/internal/backend/gemini"
	"optisheet/internal/backend/googlesheets"
	"optisheet/internal/backend/openai"
	"optisheet/internal/config"
	"optisheet/internal/log"
	"optisheet/internal/service"
)

// maxCSVSize caps downloaded CSV documents.
const maxCSVSize = 64 << 20

// Config is the configuration of Backend.
type Config struct {
	// Timeout bounds each remote request.
	Timeout time.Duration
	Logger  log.Logger
	// HTTPClient is used for CSV downloads (for testing).
	HTTPClient *http.Client
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = config.DefaultRequestTimeout
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "backend.Backend"})
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
}

// Backend is the production service.Service.
type Backend struct {
	timeout    time.Duration
	logger     log.Logger
	httpClient *http.Client
}

var _ service.Service = (*Backend)(nil)

// New returns a backend.
func New(cfg Config) *Backend {
	cfg.defaults()
	return &Backend{
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
		httpClient: cfg.HTTPClient,
	}
}

// OpenSheet implements service.Service.
func (b *Backend) OpenSheet(ctx context.Context, sheetURL, credentialFile string) (service.Spreadsheet, error) {
	if strings.TrimSpace(credentialFile) == "" {
		return nil, fmt.Errorf("%w: no credentials file configured", service.ErrAuth)
	}
	client, err := googlesheets.New(ctx, credentialFile, b.timeout)
	if err != nil {
		return nil, err
	}
	sheet, err := client.Open(ctx, sheetURL)
	if err != nil {
		return nil, err
	}
	b.logger.Debugf("opened spreadsheet %q", sheet.Title())
	return sheet, nil
}

// FetchCSV implements service.Service.
func (b *Backend) FetchCSV(ctx context.Context, csvURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %s: %v", service.ErrNetwork, csvURL, err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", service.ErrNetwork, csvURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: %s", service.ErrNetwork, csvURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCSVSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", service.ErrNetwork, csvURL, err)
	}
	if len(data) > maxCSVSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", service.ErrFile, csvURL, maxCSVSize)
	}
	b.logger.Debugf("downloaded %d bytes from %s", len(data), csvURL)
	return data, nil
}

// Completer implements service.Service.
func (b *Backend) Completer(ctx context.Context, opts service.CompleterOptions) (service.Completer, error) {
	switch strings.ToLower(opts.Provider) {
	case "", config.ProviderOpenAI:
		c, err := openai.New(openai.Config{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Model:   opts.Model,
			Timeout: b.timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		c, err := gemini.New(ctx, gemini.Config{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Model:   opts.Model,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", opts.Provider)
	}
}
