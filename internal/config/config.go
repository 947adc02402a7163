package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Trello contains credentials and the target board.
type Trello struct {
	Key     string `toml:"key"`
	Token   string `toml:"token"`
	BoardID string `toml:"board_id"`
}

// Telegram contains bot credentials and the allowed user mapping.
type Telegram struct {
	Token string `toml:"token"`
	Users []User `toml:"users"`
}

// User maps a Telegram account to the Trello username assigned to its cards.
type User struct {
	TelegramID int64  `toml:"telegram_id"`
	Username   string `toml:"trello_username"`
}

// Scraper contains settings for ČSFD.cz and KVIFF.TV page fetching.
type Scraper struct {
	UserAgent      string `toml:"user_agent"`
	RequestTimeout int    `toml:"request_timeout"`
	RetryMax       int    `toml:"retry_max"`
}

// Inbox contains settings for the periodic inbox sweep.
type Inbox struct {
	ArchiveAfterDays int    `toml:"archive_after_days"`
	Schedule         string `toml:"schedule"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for film2trello.
//
// Configuration sections by subsystem:
//   - Trello: API credentials and the board the pipeline reconciles against
//   - Telegram: bot token and the Telegram-to-Trello user mapping
//   - Scraper: user agent, timeout and retry budget for page fetching
//   - Inbox: sweep schedule and the card age threshold for archiving
//   - Logging: log format and level
type Config struct {
	Trello   Trello   `toml:"trello"`
	Telegram Telegram `toml:"telegram"`
	Scraper  Scraper  `toml:"scraper"`
	Inbox    Inbox    `toml:"inbox"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/film2trello/config.toml")
}

// Load locates, parses, and validates a configuration file. Returns the
// config, the resolved path, and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Sample returns the embedded sample configuration file contents.
func Sample() string {
	return sampleConfig
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("film2trello.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// applyEnv overlays credential values from the environment so secrets can be
// kept out of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("TRELLO_KEY"); v != "" {
		c.Trello.Key = v
	}
	if v := os.Getenv("TRELLO_TOKEN"); v != "" {
		c.Trello.Token = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
}

// Secrets returns every configured credential value for redaction.
func (c *Config) Secrets() []string {
	return []string{c.Trello.Key, c.Trello.Token, c.Telegram.Token}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
