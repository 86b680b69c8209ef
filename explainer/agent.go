package explainer

import (
	"context"
	"fmt"

	"github.com/Ingenimax/agent-sdk-go/pkg/interfaces"
	"github.com/Ingenimax/agent-sdk-go/pkg/llm/deepseek"
	"github.com/Ingenimax/agent-sdk-go/pkg/llm/openai"
	"github.com/Ingenimax/agent-sdk-go/pkg/logging"
	"github.com/rs/zerolog/log"
)

// AgentGenerator adapts an agent-sdk-go LLM client (OpenAI or DeepSeek).
type AgentGenerator struct {
	llm   interfaces.LLM
	model string
}

func NewAgentGenerator(provider, apiKey, model string) (*AgentGenerator, error) {
	logger := logging.New()
	switch provider {
	case "openai":
		if model == "" {
			model = "gpt-4.1"
		}
		log.Info().Str("model", model).Msg("Using OpenAI model")
		return &AgentGenerator{
			llm:   openai.NewClient(apiKey, openai.WithModel(model), openai.WithLogger(logger)),
			model: model,
		}, nil
	case "deepseek":
		if model == "" {
			model = "deepseek-chat"
		}
		log.Info().Str("model", model).Msg("Using DeepSeek model")
		return &AgentGenerator{
			llm:   deepseek.NewClient(apiKey, deepseek.WithModel(model), deepseek.WithLogger(logger)),
			model: model,
		}, nil
	}
	return nil, fmt.Errorf("unsupported provider: %s", provider)
}

func (a *AgentGenerator) Model() string {
	return a.model
}

// Generate sends one exchange. OpenAI failures keep their typed error;
// DeepSeek only reports the HTTP status in its message, so that is parsed
// out for classification.
func (a *AgentGenerator) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	text, err := a.llm.Generate(ctx, prompt, openai.WithSystemMessage(systemInstruction))
	if err != nil {
		return "", withStatus(err)
	}
	return text, nil
}
