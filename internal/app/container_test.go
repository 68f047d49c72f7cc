package app

import (
	"context"
	"testing"

	"github.com/kapu/liqu-discord-bot/internal/config"
	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Discord: config.DiscordConfig{
			Token:      "token",
			ClientID:   "app-1",
			APIBaseURL: constants.APIConfig.DiscordBaseURL,
			GatewayURL: constants.APIConfig.DiscordGatewayURL,
		},
		Gemini: config.GeminiConfig{
			APIKey:  "key",
			Model:   constants.APIConfig.GeminiModel,
			BaseURL: constants.APIConfig.GeminiBaseURL,
		},
		AI:     config.AIConfig{Backend: backend},
		OpenAI: config.OpenAIConfig{APIKey: "sk", Model: constants.APIConfig.OpenAIModel},
	}
}

func TestBuildWithoutOptionalStores(t *testing.T) {
	container, err := Build(context.Background(), testConfig(config.BackendREST), zap.NewNop())
	require.NoError(t, err)
	defer container.Close()

	assert.Equal(t, "Gemini", container.Answerer.Name())

	b, err := container.NewBot()
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestBuildSelectsBackend(t *testing.T) {
	container, err := Build(context.Background(), testConfig(config.BackendOpenAI), zap.NewNop())
	require.NoError(t, err)
	defer container.Close()

	assert.Equal(t, "OpenAI", container.Answerer.Name())
}

func TestBuildRejectsMissingInputs(t *testing.T) {
	_, err := Build(context.Background(), nil, zap.NewNop())
	require.Error(t, err)

	_, err = Build(context.Background(), testConfig(config.BackendREST), nil)
	require.Error(t, err)

	_, err = Build(context.Background(), testConfig("bard"), zap.NewNop())
	require.Error(t, err)
}

func TestNilContainer(t *testing.T) {
	var c *Container
	_, err := c.NewBot()
	require.Error(t, err)
	c.Close()
}
