package explainer

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiGenerator talks to the Gemini API directly, passing the rules as
// the system instruction.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("model", model).Msg("Using Gemini model")
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Model() string {
	return g.model
}

func (g *GeminiGenerator) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		})
	if err != nil {
		return "", err
	}
	if resp.UsageMetadata != nil {
		log.Debug().
			Int32("input-tokens", resp.UsageMetadata.PromptTokenCount).
			Int32("output-tokens", resp.UsageMetadata.CandidatesTokenCount).
			Msg("gemini-usage")
	}
	return resp.Text(), nil
}
