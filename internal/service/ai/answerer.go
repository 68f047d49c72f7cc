package ai

import (
	"context"
	"fmt"

	"github.com/kapu/liqu-discord-bot/internal/config"
	"github.com/kapu/liqu-discord-bot/internal/prompt"
	"go.uber.org/zap"
)

// Answerer turns a user question into answer text. Implementations issue
// exactly one provider request per call. A malformed provider response is
// not an error: the fixed apology text is returned instead.
type Answerer interface {
	Name() string
	Answer(ctx context.Context, question string) (string, error)
}

var buildPrompt = prompt.Build

// NewAnswerer builds the backend selected by cfg.AI.Backend.
func NewAnswerer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Answerer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	switch cfg.AI.Backend {
	case config.BackendGenAI:
		return NewGenAIProvider(ctx, GenAIConfig{
			APIKey:     cfg.Gemini.APIKey,
			Model:      cfg.Gemini.Model,
			BaseURL:    cfg.Gemini.BaseURL,
			BotContext: cfg.Bot.Context,
		}, logger)
	case config.BackendOpenAI:
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:     cfg.OpenAI.APIKey,
			Model:      cfg.OpenAI.Model,
			BotContext: cfg.Bot.Context,
		}, logger), nil
	case config.BackendREST, "":
		return NewGeminiRESTClient(GeminiRESTConfig{
			APIKey:     cfg.Gemini.APIKey,
			Model:      cfg.Gemini.Model,
			BaseURL:    cfg.Gemini.BaseURL,
			BotContext: cfg.Bot.Context,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown AI backend %q", cfg.AI.Backend)
	}
}
