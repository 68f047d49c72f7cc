package config

import (
	stderrors "errors"
	"testing"

	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("CLIENT_ID", "123456789")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("AI_BACKEND", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("BOT_CONTEXT", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("GEMINI_BASE_URL", "")
	t.Setenv("DISCORD_API_BASE_URL", "")
	t.Setenv("DISCORD_GATEWAY_URL", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("POSTGRES_HOST", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Discord.Token)
	assert.Equal(t, "123456789", cfg.Discord.ClientID)
	assert.Equal(t, constants.APIConfig.DiscordBaseURL, cfg.Discord.APIBaseURL)
	assert.Equal(t, constants.APIConfig.GeminiModel, cfg.Gemini.Model)
	assert.Equal(t, BackendREST, cfg.AI.Backend)
	assert.False(t, cfg.HasContext())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Postgres.Enabled())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadKeepsContextVerbatim(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BOT_CONTEXT", "You are Liq'u")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.HasContext())
	assert.Equal(t, "You are Liq'u", cfg.Bot.Context)
}

func TestLoadMissingCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)

	var configErr *errors.ConfigError
	require.True(t, stderrors.As(err, &configErr))
	assert.Contains(t, configErr.Problems, "DISCORD_TOKEN is a required field")
	assert.Contains(t, configErr.Problems, "GEMINI_API_KEY is a required field")
	assert.NotContains(t, configErr.Problems, "CLIENT_ID is a required field")
}

func TestLoadOpenAIBackendRequiresKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_BACKEND", "OpenAI")

	_, err := Load()
	require.Error(t, err)

	var configErr *errors.ConfigError
	require.True(t, stderrors.As(err, &configErr))
	assert.Equal(t, []string{"OPENAI_API_KEY is a required field"}, configErr.Problems)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendOpenAI, cfg.AI.Backend)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_BACKEND", "claude")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_BACKEND")
}

func TestOptionalStoresEnabledByHost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("POSTGRES_HOST", "db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.True(t, cfg.Postgres.Enabled())
	assert.Equal(t, 5432, cfg.Postgres.Port)
}
