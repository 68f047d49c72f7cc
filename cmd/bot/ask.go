package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/kapu/liqu-discord-bot/internal/constants"
	"github.com/kapu/liqu-discord-bot/internal/delivery"
	"github.com/kapu/liqu-discord-bot/internal/service/ai"
	"github.com/spf13/cobra"
)

func newAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the configured AI backend and print the reply as Discord would chunk it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			answerer, err := ai.NewAnswerer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if closer, ok := answerer.(io.Closer); ok {
				defer closer.Close()
			}

			answer, err := answerer.Answer(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to fetch answer: %w", err)
			}

			printChunks(cmd.OutOrStdout(), delivery.Chunk(answer, constants.DiscordLimits.MaxMessageLength))
			return nil
		},
	}
}

func printChunks(w io.Writer, chunks []string) {
	header := color.New(color.FgCyan, color.Bold)
	for i, chunk := range chunks {
		fmt.Fprintln(w, header.Sprintf("[message %d/%d]", i+1, len(chunks)))
		fmt.Fprintln(w, chunk)
	}
}
