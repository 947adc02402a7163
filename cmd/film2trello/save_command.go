package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"film2trello/internal/progress"
)

func newSaveCommand(ctx *commandContext) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "save [text]...",
		Short: "Save one film link to the board without the bot",
		Long: "Save runs the same pipeline the bot does for a single message. " +
			"The text may be a bare ČSFD.cz or KVIFF.TV link or any message containing one.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			processor, cfg, _, err := ctx.newProcessor()
			if err != nil {
				return err
			}
			boardID, err := ctx.boardID()
			if err != nil {
				return err
			}

			user := strings.TrimSpace(username)
			if user == "" {
				if len(cfg.Telegram.Users) == 0 {
					return errors.New("no Trello username given; use --user or configure telegram.users")
				}
				user = cfg.Telegram.Users[0].Username
			}

			out := cmd.OutOrStdout()
			reporter := progress.Func(func(message string) {
				fmt.Fprintln(out, message)
			})

			cardURL, err := processor.ProcessMessage(cmd.Context(),
				reporter, user, strings.Join(args, " "), boardID)
			if err != nil {
				return ctx.redactError(err)
			}
			fmt.Fprintln(out, cardURL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Trello username to assign to the card")
	return cmd
}
