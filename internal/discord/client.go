package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// Client is the Discord REST client used for interaction replies and
// command registration. Requests are never retried.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = constants.APIConfig.DiscordTimeout
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("Authorization", "Bot "+token)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("User-Agent", fmt.Sprintf("DiscordBot (https://github.com/kapu/liqu-discord-bot, %s)", constants.Version))
	client.SetLogger(logger.Sugar())

	return &Client{http: client, logger: logger}
}

func (c *Client) Close() error {
	return c.http.Close()
}

// CreateInteractionResponse sends the initial response to an interaction.
func (c *Client) CreateInteractionResponse(ctx context.Context, interactionID, token string, resp InteractionResponse) error {
	req := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": interactionID, "token": token}).
		SetBody(resp)

	res, err := req.Post("/interactions/{id}/{token}/callback")
	return c.check("create interaction response", res, err)
}

// EditOriginalResponse replaces the content of the initial response.
func (c *Client) EditOriginalResponse(ctx context.Context, applicationID, token string, msg MessageData) error {
	req := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"app": applicationID, "token": token}).
		SetBody(msg)

	res, err := req.Patch("/webhooks/{app}/{token}/messages/@original")
	return c.check("edit original response", res, err)
}

// CreateFollowupMessage posts an additional message on the interaction webhook.
func (c *Client) CreateFollowupMessage(ctx context.Context, applicationID, token string, msg MessageData) error {
	req := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"app": applicationID, "token": token}).
		SetBody(msg)

	res, err := req.Post("/webhooks/{app}/{token}")
	return c.check("create followup message", res, err)
}

// BulkOverwriteGlobalCommands replaces every global command of the application.
func (c *Client) BulkOverwriteGlobalCommands(ctx context.Context, applicationID string, commands []ApplicationCommand) ([]ApplicationCommand, error) {
	var registered []ApplicationCommand
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("app", applicationID).
		SetBody(commands).
		SetResult(&registered).
		Put("/applications/{app}/commands")
	if err := c.check("bulk overwrite global commands", res, err); err != nil {
		return nil, err
	}
	return registered, nil
}

func (c *Client) check(op string, res *resty.Response, err error) error {
	if err != nil {
		return errors.NewAPIError(op+" failed", 0, map[string]any{"op": op}).WithCause(err)
	}
	if res.IsError() {
		c.logger.Debug("Discord API error",
			zap.String("op", op),
			zap.Int("status", res.StatusCode()),
		)
		return errors.NewAPIError(
			fmt.Sprintf("Discord API error: %s", res.Status()),
			res.StatusCode(),
			map[string]any{
				"op":   op,
				"body": res.String(),
			},
		)
	}
	return nil
}
