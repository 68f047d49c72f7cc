package main

import (
	"context"
	"time"

	"github.com/kapu/liqu-discord-bot/internal/app"
	"github.com/spf13/cobra"
)

func newRegisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the /ask slash command and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			container, err := app.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer container.Close()

			discordBot, err := container.NewBot()
			if err != nil {
				return err
			}
			return discordBot.RegisterCommands(ctx)
		},
	}
}
