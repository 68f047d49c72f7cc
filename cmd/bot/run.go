package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/liqu-discord-bot/internal/app"
	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and answer /ask commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}
}

func runBot(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, logger, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Liq'u Discord bot starting...",
		zap.String("version", constants.Version),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("backend", cfg.AI.Backend),
	)

	buildCtx, buildCancel := context.WithTimeout(parent, 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		return err
	}

	discordBot, err := container.NewBot()
	if err != nil {
		logger.Error("Failed to initialize bot", zap.Error(err))
		container.Close()
		return err
	}

	// Create context with cancellation for runtime lifecycle
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		if err := discordBot.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	logger.Info("Bot started, waiting for signals...")

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		logger.Error("Bot error", zap.Error(runErr))
	}

	logger.Info("Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := discordBot.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return runErr
}
