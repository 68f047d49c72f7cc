package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	BotContext string
}

// GenAIProvider answers through the google.golang.org/genai SDK.
type GenAIProvider struct {
	client     *genai.Client
	model      string
	botContext string
	logger     *zap.Logger
}

func NewGenAIProvider(ctx context.Context, cfg GenAIConfig, logger *zap.Logger) (*GenAIProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = constants.APIConfig.GeminiModel
	}

	return &GenAIProvider{
		client:     client,
		model:      model,
		botContext: cfg.BotContext,
		logger:     logger,
	}, nil
}

func (g *GenAIProvider) Name() string {
	return "Gemini SDK"
}

func (g *GenAIProvider) Answer(ctx context.Context, question string) (string, error) {
	finalPrompt, err := buildPrompt(g.botContext, question)
	if err != nil {
		return "", errors.NewTransportError(g.Name(), "failed to build prompt", err)
	}

	g.logger.Info("Sending prompt to Gemini",
		zap.String("model", g.model),
		zap.Int("prompt_length", len([]rune(finalPrompt))),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: finalPrompt}},
		},
	}, nil)
	if err != nil {
		g.logger.Error("Gemini generation failed", zap.Error(err))
		if status := genaiStatusCode(err); status != 0 {
			return "", errors.NewProviderError(g.Name(), status, err.Error())
		}
		return "", errors.NewTransportError(g.Name(), "request failed", err)
	}

	text := extractTextFromGeminiResponse(resp)
	if text == "" {
		g.logger.Error("Unexpected response structure from Gemini", zap.String("model", g.model))
		return constants.UnexpectedResponseReply, nil
	}

	return text, nil
}

func genaiStatusCode(err error) int {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if stderrors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}
