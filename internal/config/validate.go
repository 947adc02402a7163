package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTrello(); err != nil {
		return err
	}
	if err := c.validateScraper(); err != nil {
		return err
	}
	if err := c.validateInbox(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTrello() error {
	if strings.TrimSpace(c.Trello.Key) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/film2trello/config.toml"
		}
		return fmt.Errorf("trello.key is required. Set TRELLO_KEY env var or edit %s (create with 'film2trello config init')", defaultPath)
	}
	if strings.TrimSpace(c.Trello.Token) == "" {
		return errors.New("trello.token is required. Set TRELLO_TOKEN env var or the trello.token config value")
	}
	if strings.TrimSpace(c.Trello.BoardID) == "" {
		return errors.New("trello.board_id must be set")
	}
	return nil
}

func (c *Config) validateScraper() error {
	if strings.TrimSpace(c.Scraper.UserAgent) == "" {
		return errors.New("scraper.user_agent must not be empty")
	}
	if c.Scraper.RequestTimeout <= 0 {
		return errors.New("scraper.request_timeout must be positive")
	}
	if c.Scraper.RetryMax < 0 {
		return errors.New("scraper.retry_max must not be negative")
	}
	return nil
}

func (c *Config) validateInbox() error {
	if c.Inbox.ArchiveAfterDays <= 0 {
		return errors.New("inbox.archive_after_days must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// ValidateTelegram checks the bot-specific settings. Only the bot command
// needs these, so they are not part of Validate.
func (c *Config) ValidateTelegram() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required. Set TELEGRAM_TOKEN env var or the telegram.token config value")
	}
	if len(c.Telegram.Users) == 0 {
		return errors.New("telegram.users must list at least one allowed user")
	}
	for _, user := range c.Telegram.Users {
		if user.TelegramID == 0 {
			return errors.New("telegram.users entries must set telegram_id")
		}
		if strings.TrimSpace(user.Username) == "" {
			return fmt.Errorf("telegram.users entry %d must set trello_username", user.TelegramID)
		}
	}
	return nil
}
