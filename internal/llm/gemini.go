package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"studybuddy/internal/apperr"
	"studybuddy/internal/config"
	"studybuddy/internal/models"
)

// Gemini generates through Google's hosted Gemini models, the service
// both assistants were built against.
type Gemini struct {
	client    *genai.Client
	modelName string
}

func NewGemini(ctx context.Context, cfg *config.LLMConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Key))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, modelName: cfg.Model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, params models.GenerationParams) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(float32(params.Temperature))
	model.SetTopP(float32(params.TopP))
	if params.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(params.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Str("model", g.modelName).Msg("gemini generation failed")
		return "", classify(err, "gemini")
	}
	text := flatten(resp)
	if text == "" {
		return "", apperr.New(apperr.UpstreamRejected, "gemini returned an empty candidate")
	}
	return text, nil
}

func (g *Gemini) Close() error { return g.client.Close() }

func flatten(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
