package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"film2trello/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := os.WriteFile(target, []byte(config.Sample()), 0o600); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Fill in trello.key, trello.token and telegram.token (or export the matching env vars).")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trello.board_id:          %s\n", cfg.Trello.BoardID)
			fmt.Fprintf(out, "trello.key:               %s\n", maskSecret(cfg.Trello.Key))
			fmt.Fprintf(out, "trello.token:             %s\n", maskSecret(cfg.Trello.Token))
			fmt.Fprintf(out, "telegram.token:           %s\n", maskSecret(cfg.Telegram.Token))
			for _, user := range cfg.Telegram.Users {
				fmt.Fprintf(out, "telegram.user:            %d -> %s\n", user.TelegramID, user.Username)
			}
			fmt.Fprintf(out, "scraper.user_agent:       %s\n", cfg.Scraper.UserAgent)
			fmt.Fprintf(out, "scraper.request_timeout:  %d\n", cfg.Scraper.RequestTimeout)
			fmt.Fprintf(out, "scraper.retry_max:        %d\n", cfg.Scraper.RetryMax)
			fmt.Fprintf(out, "inbox.archive_after_days: %d\n", cfg.Inbox.ArchiveAfterDays)
			fmt.Fprintf(out, "inbox.schedule:           %s\n", cfg.Inbox.Schedule)
			fmt.Fprintf(out, "logging.format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "logging.level:            %s\n", cfg.Logging.Level)
			return nil
		},
	}
}

func maskSecret(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "(set)"
}
