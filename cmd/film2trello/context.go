package main

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"film2trello/internal/config"
	"film2trello/internal/fetch"
	"film2trello/internal/logging"
	"film2trello/internal/services"
	"film2trello/internal/services/trello"
	"film2trello/internal/workflow"
)

type commandContext struct {
	configFlag *string
	boardFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, boardFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		boardFlag:  boardFlag,
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// boardID resolves the target board, letting the --board flag win over the
// config file.
func (c *commandContext) boardID() (string, error) {
	if c.boardFlag != nil && strings.TrimSpace(*c.boardFlag) != "" {
		return strings.TrimSpace(*c.boardFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Trello.BoardID, nil
}

// newProcessor wires the pipeline from the loaded config.
func (c *commandContext) newProcessor() (*workflow.Processor, *config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	board, err := trello.New(cfg.Trello.Key, cfg.Trello.Token)
	if err != nil {
		return nil, nil, nil, err
	}
	processor := workflow.New(fetch.New(cfg), board, logger,
		workflow.WithArchiveAfterDays(cfg.Inbox.ArchiveAfterDays))
	return processor, cfg, logger, nil
}

// redactError scrubs configured secrets out of an error before it reaches
// the terminal.
func (c *commandContext) redactError(err error) error {
	if err == nil || c.config == nil {
		return err
	}
	message := err.Error()
	redacted := services.Redact(message, c.config.Secrets()...)
	if redacted == message {
		return err
	}
	return errors.New(redacted)
}
