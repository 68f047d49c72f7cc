package ai

import (
	"context"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/internal/util"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"resty.dev/v3"
)

const (
	geminiProviderName = "Gemini"
	generateContentURL = "/v1beta/models/{model}:generateContent"
	answerTextPath     = "candidates.0.content.parts.0.text"
	promptTextPath     = "contents.0.parts.0.text"
	requestSkeleton    = `{"contents":[{"parts":[{"text":""}]}]}`
)

type GeminiRESTConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	BotContext string
}

// GeminiRESTClient calls the generateContent REST endpoint directly, with the
// API key as a query parameter.
type GeminiRESTClient struct {
	httpClient *resty.Client
	apiKey     string
	model      string
	botContext string
	logger     *zap.Logger
}

func NewGeminiRESTClient(cfg GeminiRESTConfig, logger *zap.Logger) *GeminiRESTClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = constants.APIConfig.GeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = constants.APIConfig.GeminiModel
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0).
		SetLogger(logger.Sugar())

	return &GeminiRESTClient{
		httpClient: client,
		apiKey:     cfg.APIKey,
		model:      model,
		botContext: cfg.BotContext,
		logger:     logger,
	}
}

func (c *GeminiRESTClient) Name() string {
	return geminiProviderName
}

func (c *GeminiRESTClient) Close() error {
	return c.httpClient.Close()
}

func (c *GeminiRESTClient) Answer(ctx context.Context, question string) (string, error) {
	finalPrompt, err := buildPrompt(c.botContext, question)
	if err != nil {
		return "", errors.NewTransportError(geminiProviderName, "failed to build prompt", err)
	}

	body, err := sjson.Set(requestSkeleton, promptTextPath, finalPrompt)
	if err != nil {
		return "", errors.NewTransportError(geminiProviderName, "failed to encode request", err)
	}

	c.logger.Info("Sending prompt to Gemini",
		zap.String("model", c.model),
		zap.Int("prompt_length", len([]rune(finalPrompt))),
	)

	response, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetQueryParam("key", c.apiKey).
		SetBody([]byte(body)).
		Post(generateContentURL)
	if err != nil {
		c.logger.Error("Error during fetch to Gemini API", zap.Error(err))
		return "", errors.NewTransportError(geminiProviderName, "request failed", err)
	}

	responseBody := response.String()
	if !response.IsSuccess() {
		c.logger.Error("Gemini API error response",
			zap.Int("status", response.StatusCode()),
			zap.String("body", util.TruncateString(responseBody, 500)),
		)
		return "", errors.NewProviderError(geminiProviderName, response.StatusCode(), responseBody)
	}

	if !gjson.Valid(responseBody) {
		return "", errors.NewTransportError(geminiProviderName, "malformed JSON response", nil)
	}

	answer := gjson.Get(responseBody, answerTextPath)
	if !answer.Exists() || answer.Type != gjson.String {
		c.logger.Error("Unexpected response structure from Gemini",
			zap.String("body", util.TruncateString(responseBody, 500)),
		)
		return constants.UnexpectedResponseReply, nil
	}

	return answer.String(), nil
}
