package ai

import (
	"context"
	stderrors "errors"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	BotContext string
}

// OpenAIProvider wraps the OpenAI chat completion client.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	botContext string
	logger     *zap.Logger
}

func NewOpenAIProvider(cfg OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = constants.APIConfig.OpenAIModel
	}

	return &OpenAIProvider{
		client:     &client,
		model:      model,
		botContext: cfg.BotContext,
		logger:     logger,
	}
}

func (o *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (o *OpenAIProvider) Answer(ctx context.Context, question string) (string, error) {
	finalPrompt, err := buildPrompt(o.botContext, question)
	if err != nil {
		return "", errors.NewTransportError(o.Name(), "failed to build prompt", err)
	}

	o.logger.Info("Sending prompt to OpenAI",
		zap.String("model", o.model),
		zap.Int("prompt_length", len([]rune(finalPrompt))),
	)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(finalPrompt),
		},
	})
	if err != nil {
		o.logger.Error("OpenAI generation failed", zap.Error(err))
		var apiErr *openai.Error
		if stderrors.As(err, &apiErr) {
			return "", errors.NewProviderError(o.Name(), apiErr.StatusCode, apiErr.Message)
		}
		return "", errors.NewTransportError(o.Name(), "request failed", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		o.logger.Error("Unexpected response structure from OpenAI", zap.String("model", o.model))
		return constants.UnexpectedResponseReply, nil
	}

	o.logger.Info("OpenAI response received",
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}
