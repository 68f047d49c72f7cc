package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/kapu/liqu-discord-bot/internal/config"
	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/internal/util"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		var configErr *errors.ConfigError
		if stderrors.As(err, &configErr) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", configErr.Error())
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "liqu-bot",
		Short:         "Discord /ask bridge to Gemini",
		Version:       constants.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newRegisterCommand())
	rootCmd.AddCommand(newAskCommand())

	return rootCmd
}

// bootstrap loads configuration and builds the process logger. The caller
// runs the returned cleanup before exiting.
func bootstrap() (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, cleanup, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if !cfg.HasContext() {
		logger.Warn("BOT_CONTEXT not configured, using the default persona")
	}

	return cfg, logger, cleanup, nil
}
