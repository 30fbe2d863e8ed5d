package llm

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"studybuddy/internal/apperr"
	"studybuddy/internal/config"
	"studybuddy/internal/models"
)

// OpenAI generates through any OpenAI-compatible chat completion
// endpoint (OpenRouter in deployment).
type OpenAI struct {
	llm *openai.LLM
}

func NewOpenAI(cfg *config.LLMConfig) (*OpenAI, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return &OpenAI{llm: llm}, nil
}

func (o *OpenAI) Generate(ctx context.Context, prompt string, params models.GenerationParams) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	resp, err := o.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(params.Temperature),
		llms.WithTopP(params.TopP),
		llms.WithMaxTokens(params.MaxTokens),
	)
	if err != nil {
		log.Error().Err(err).Msg("chat completion failed")
		return "", classify(err, "generation service")
	}
	if len(resp.Choices) == 0 {
		return "", apperr.New(apperr.UpstreamRejected, "generation service returned no choices")
	}
	return resp.Choices[0].Content, nil
}
