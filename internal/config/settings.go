package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ProviderOpenAI selects the OpenAI chat-completions backend.
	ProviderOpenAI = "openai"

	// ProviderGemini selects the Gemini backend.
	ProviderGemini = "gemini"

	// DefaultRequestTimeout bounds each completion request.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultMaxTokens caps each verdict. Only a short answer is expected.
	DefaultMaxTokens = 10
)

// Settings is the persisted key/value record edited by the config command.
type Settings struct {
	// CredentialsPath is the Google service account key file.
	CredentialsPath string `yaml:"credentials_path,omitempty"`

	// APIKey is the completion provider API key.
	APIKey string `yaml:"api_key,omitempty"`

	// Provider is "openai" (default) or "gemini".
	Provider string `yaml:"provider,omitempty"`

	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// RequestTimeout bounds each remote request.
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`

	// MaxTokens caps the length of each answer.
	MaxTokens int `yaml:"max_tokens,omitempty"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Provider:       ProviderOpenAI,
		RequestTimeout: DefaultRequestTimeout,
		MaxTokens:      DefaultMaxTokens,
	}
}

// LoadSettings reads settings from a YAML file.
// A missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	s.normalize()

	return s, nil
}

// Save writes settings to a YAML file with mode 0600, since it holds an API key.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Validate checks values that cannot be corrected silently.
func (s *Settings) Validate() error {
	switch s.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown provider: %s (want %s or %s)", s.Provider, ProviderOpenAI, ProviderGemini)
	}
	if s.RequestTimeout < 0 {
		return fmt.Errorf("invalid request timeout: %s", s.RequestTimeout)
	}
	if s.MaxTokens < 0 {
		return fmt.Errorf("invalid max tokens: %d", s.MaxTokens)
	}
	return nil
}

// MaskedAPIKey returns the API key with all but the last four characters hidden.
func (s *Settings) MaskedAPIKey() string {
	if s.APIKey == "" {
		return ""
	}
	if len(s.APIKey) <= 4 {
		return strings.Repeat("*", len(s.APIKey))
	}
	return strings.Repeat("*", len(s.APIKey)-4) + s.APIKey[len(s.APIKey)-4:]
}

func (s *Settings) normalize() {
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	if s.Provider == "" {
		s.Provider = ProviderOpenAI
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.MaxTokens == 0 {
		s.MaxTokens = DefaultMaxTokens
	}
}

// applyEnvOverrides applies environment variable overrides.
// A provider key found in the environment only applies to that provider.
func (s *Settings) applyEnvOverrides() {
	if path := os.Getenv("OPTISHEET_CREDENTIALS"); path != "" {
		s.CredentialsPath = path
	}
	if key := EnvAPIKey(s.Provider); key != "" {
		s.APIKey = key
	}
}

// EnvAPIKey returns the API key set in the environment for provider.
func EnvAPIKey(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	}
	return ""
}
