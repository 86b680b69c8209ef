package explainer

import (
	"context"
	"errors"
	"fmt"

	"github.com/lmorris/morrisbot/config"
)

// Generator sends one exchange to a text model: a fixed system instruction
// and a user message. It returns the model's text unmodified.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
	Model() string
}

var ErrMissingAPIKey = errors.New("no api key configured")

// NewGenerator builds the generator for the configured genai-provider.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	provider := cfg.GetString(config.ConfigGenaiProvider)
	apiKey := cfg.APIKey(provider)
	model := cfg.Model(provider)

	switch provider {
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, provider)
		}
		return NewGeminiGenerator(ctx, apiKey, model)
	case "openai", "deepseek":
		if apiKey == "" {
			return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, provider)
		}
		return NewAgentGenerator(provider, apiKey, model)
	}
	return nil, fmt.Errorf("unsupported provider: %s", provider)
}
