package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kapu/liqu-discord-bot/internal/constants"
)

const (
	BackendREST   = "rest"
	BackendGenAI  = "genai"
	BackendOpenAI = "openai"
)

type Config struct {
	Discord  DiscordConfig
	Gemini   GeminiConfig
	AI       AIConfig
	OpenAI   OpenAIConfig
	Bot      BotConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Logging  LoggingConfig
}

type DiscordConfig struct {
	Token      string `env:"DISCORD_TOKEN" validate:"required"`
	ClientID   string `env:"CLIENT_ID" validate:"required"`
	APIBaseURL string `env:"DISCORD_API_BASE_URL" validate:"required,url"`
	GatewayURL string `env:"DISCORD_GATEWAY_URL" validate:"required"`
}

type GeminiConfig struct {
	APIKey  string `env:"GEMINI_API_KEY" validate:"required"`
	Model   string `env:"GEMINI_MODEL" validate:"required"`
	BaseURL string `env:"GEMINI_BASE_URL" validate:"required,url"`
}

type AIConfig struct {
	Backend string `env:"AI_BACKEND" validate:"oneof=rest genai openai"`
}

type OpenAIConfig struct {
	APIKey string `env:"OPENAI_API_KEY"`
	Model  string `env:"OPENAI_MODEL"`
}

// BotConfig holds the operator persona text prepended to every question.
type BotConfig struct {
	Context string `env:"BOT_CONTEXT"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT" validate:"min=0,max=65535"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" validate:"min=0"`
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST"`
	Port     int    `env:"POSTGRES_PORT" validate:"min=0,max=65535"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	Database string `env:"POSTGRES_DB"`
}

type LoggingConfig struct {
	Level string `env:"LOG_LEVEL"`
	File  string `env:"LOG_FILE"`
}

// Load reads .env (when present) and the process environment once. The
// returned Config is treated as immutable for the process lifetime.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Discord: DiscordConfig{
			Token:      getEnv("DISCORD_TOKEN", ""),
			ClientID:   getEnv("CLIENT_ID", ""),
			APIBaseURL: getEnv("DISCORD_API_BASE_URL", constants.APIConfig.DiscordBaseURL),
			GatewayURL: getEnv("DISCORD_GATEWAY_URL", constants.APIConfig.DiscordGatewayURL),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", constants.APIConfig.GeminiModel),
			BaseURL: getEnv("GEMINI_BASE_URL", constants.APIConfig.GeminiBaseURL),
		},
		AI: AIConfig{
			Backend: strings.ToLower(getEnv("AI_BACKEND", BackendREST)),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", constants.APIConfig.OpenAIModel),
		},
		Bot: BotConfig{
			Context: os.Getenv("BOT_CONTEXT"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "liqu"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "liqu"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HasContext reports whether an operator persona was configured.
func (c *Config) HasContext() bool {
	return c.Bot.Context != ""
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
