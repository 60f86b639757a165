package llm

import (
	"fmt"
	"strings"

	"github.com/papercheck/papercheck/internal/model"
)

// NewProvider creates the configured provider. An empty provider name means
// the advisory summary is disabled and returns (nil, nil).
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the configuration-tree form to llm.Config.
func ConfigFromModel(m model.LLMConfig) Config {
	return Config{
		Provider:  m.Provider,
		Model:     m.Model,
		APIKey:    m.APIKey,
		BaseURL:   m.BaseURL,
		Timeout:   m.Timeout,
		MaxTokens: m.MaxTokens,
	}
}
