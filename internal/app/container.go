package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kapu/liqu-discord-bot/internal/bot"
	"github.com/kapu/liqu-discord-bot/internal/command"
	"github.com/kapu/liqu-discord-bot/internal/config"
	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/internal/delivery"
	"github.com/kapu/liqu-discord-bot/internal/discord"
	"github.com/kapu/liqu-discord-bot/internal/service/ai"
	"github.com/kapu/liqu-discord-bot/internal/service/cache"
	"github.com/kapu/liqu-discord-bot/internal/service/database"
	"go.uber.org/zap"
)

// Container bundles assembled services for constructing runtime components like Bot.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Answerer ai.Answerer

	botDeps *bot.Dependencies
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if c == nil || c.botDeps == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.botDeps)
}

// Close releases every resource Build opened. Bot.Shutdown does the same for
// a started bot.
func (c *Container) Close() {
	if c == nil || c.botDeps == nil {
		return
	}
	closeAll(c.botDeps.Closers)
}

// Build assembles all infrastructure services and returns a container capable of
// creating fully-wired bots. Redis and PostgreSQL are optional and only dialled
// when configured.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []io.Closer
	defer func() {
		if err != nil {
			closeAll(closers)
		}
	}()

	// Discord primitives
	rest := discord.NewClient(cfg.Discord.APIBaseURL, cfg.Discord.Token, constants.APIConfig.DiscordTimeout, logger)
	closers = append(closers, rest)

	gateway := discord.NewGateway(discord.GatewayOptions{
		URL:                  cfg.Discord.GatewayURL,
		Token:                cfg.Discord.Token,
		Intents:              discord.DefaultIntents,
		MaxReconnectAttempts: constants.WebSocketConfig.MaxReconnectAttempts,
		ReconnectDelay:       constants.WebSocketConfig.ReconnectDelay,
		HandshakeTimeout:     constants.WebSocketConfig.HandshakeTimeout,
	}, logger)

	// Interaction claim guard
	var cacheSvc *cache.CacheService
	if cfg.Redis.Enabled() {
		cacheSvc, err = cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		closers = append(closers, cacheSvc)
	} else {
		logger.Info("Redis not configured, interaction claims disabled")
	}
	claimer := cache.NewClaimer(cacheSvc, claimOwner(), logger)

	// Audit log
	var audit command.AuditRecorder = command.NopAuditRecorder{}
	if cfg.Postgres.Enabled() {
		postgresSvc, pgErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", pgErr)
		}
		closers = append(closers, postgresSvc)

		auditRepo := database.NewAuditRepository(postgresSvc, logger)
		if err = auditRepo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare audit schema: %w", err)
		}
		audit = auditRepo
	}

	// AI backend
	answerer, err := ai.NewAnswerer(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI backend: %w", err)
	}
	if closer, ok := answerer.(io.Closer); ok {
		closers = append(closers, closer)
	}
	logger.Info("AI backend ready", zap.String("backend", answerer.Name()))

	// Commands
	registry := command.NewRegistry()
	registry.Register(command.NewAskCommand(&command.Dependencies{
		Answerer:  answerer,
		Deliverer: delivery.NewDeliverer(constants.DiscordLimits.MaxMessageLength, logger),
		Audit:     audit,
		Logger:    logger,
	}))

	deps := &bot.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Gateway:    gateway,
		REST:       rest,
		Registry:   registry,
		Dispatcher: command.NewDispatcher(registry, logger),
		Claimer:    claimer,
		Closers:    closers,
	}

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Answerer: answerer,
		botDeps:  deps,
	}, nil
}

func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i].Close()
	}
}

func claimOwner() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}
