package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"film2trello/internal/bot"
)

func newBotCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			processor, cfg, logger, err := ctx.newProcessor()
			if err != nil {
				return err
			}
			if err := cfg.ValidateTelegram(); err != nil {
				return err
			}
			boardID, err := ctx.boardID()
			if err != nil {
				return err
			}

			users := make(map[int64]string, len(cfg.Telegram.Users))
			for _, user := range cfg.Telegram.Users {
				users[user.TelegramID] = user.Username
			}

			telegramBot, err := bot.New(bot.Config{
				Token:   cfg.Telegram.Token,
				BoardID: boardID,
				Users:   users,
				Secrets: cfg.Secrets(),
			}, processor, logger)
			if err != nil {
				return ctx.redactError(fmt.Errorf("start bot: %w", err))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = telegramBot.Run(runCtx)
			if errors.Is(err, context.Canceled) {
				logger.Info("bot stopped")
				return nil
			}
			return ctx.redactError(err)
		},
	}
}
