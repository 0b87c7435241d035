// Package gemini implements service.Completer with the Google GenAI SDK.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"optisheet/internal/service"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Config is the configuration of Client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint (for testing).
	BaseURL string
	// HTTPClient overrides the HTTP client (for testing).
	HTTPClient *http.Client
}

// Client implements service.Completer using the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a new Gemini client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: Gemini API key not configured", service.ErrAuth)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: client, model: cfg.Model}, nil
}

// Complete sends a single generate content request.
func (c *Client) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	gcc := &genai.GenerateContentConfig{}
	if req.System != "" {
		gcc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		gcc.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), gcc)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", service.ErrAPI, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response from %s", service.ErrAPI, c.model)
	}
	return text, nil
}
