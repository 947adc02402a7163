package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newInboxCommand(ctx *commandContext) *cobra.Command {
	var schedule bool
	var scheduleSpec string

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Sweep the inbox column: archive stale cards, refresh and reorder the rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			processor, cfg, logger, err := ctx.newProcessor()
			if err != nil {
				return err
			}
			boardID, err := ctx.boardID()
			if err != nil {
				return err
			}

			if !schedule {
				return ctx.redactError(processor.ProcessInbox(cmd.Context(), boardID))
			}

			spec := strings.TrimSpace(scheduleSpec)
			if spec == "" {
				spec = cfg.Inbox.Schedule
			}
			if spec == "" {
				return fmt.Errorf("no cron expression; set inbox.schedule or pass --cron")
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			scheduler := cron.New()
			_, err = scheduler.AddFunc(spec, func() {
				logger.Info("scheduled inbox sweep starting", "board", boardID)
				if err := processor.ProcessInbox(runCtx, boardID); err != nil {
					logger.Error("inbox sweep failed", "error", err)
				}
			})
			if err != nil {
				return fmt.Errorf("parse cron expression %q: %w", spec, err)
			}

			logger.Info("inbox sweep scheduled", "cron", spec, "board", boardID)
			scheduler.Start()
			<-runCtx.Done()
			<-scheduler.Stop().Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&schedule, "schedule", false, "Keep running and sweep on a cron schedule")
	cmd.Flags().StringVar(&scheduleSpec, "cron", "", "Cron expression for --schedule (overrides inbox.schedule)")
	return cmd
}
