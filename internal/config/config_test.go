package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"film2trello/internal/config"
)

func TestLoadWithoutFileUsesDefaultsAndEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TRELLO_KEY", "key-from-env")
	t.Setenv("TRELLO_TOKEN", "token-from-env")
	t.Setenv("TELEGRAM_TOKEN", "")

	missing := filepath.Join(tempHome, "nope.toml")
	cfg, resolved, exists, err := config.Load(missing)
	if err == nil {
		// board_id has no default, so a bare environment cannot validate.
		t.Fatalf("expected validation error, got config %+v (resolved=%q exists=%v)", cfg, resolved, exists)
	}
	if !strings.Contains(err.Error(), "board_id") {
		t.Fatalf("expected board_id error, got %v", err)
	}
}

func TestLoadParsesFileAndAppliesEnvOverride(t *testing.T) {
	t.Setenv("TRELLO_TOKEN", "token-from-env")
	t.Setenv("TRELLO_KEY", "")
	t.Setenv("TELEGRAM_TOKEN", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[trello]
key = "key-from-file"
token = "token-from-file"
board_id = "zmyDOaFL"

[[telegram.users]]
telegram_id = 119318534
trello_username = "honzajavorek"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Trello.Key != "key-from-file" {
		t.Fatalf("unexpected key: %q", cfg.Trello.Key)
	}
	if cfg.Trello.Token != "token-from-env" {
		t.Fatalf("env override lost: %q", cfg.Trello.Token)
	}
	if cfg.Scraper.RetryMax != 2 {
		t.Fatalf("expected default retry_max, got %d", cfg.Scraper.RetryMax)
	}
	if cfg.Inbox.ArchiveAfterDays != 730 {
		t.Fatalf("expected default archive_after_days, got %d", cfg.Inbox.ArchiveAfterDays)
	}
	if got := cfg.Secrets(); len(got) != 3 || got[1] != "token-from-env" {
		t.Fatalf("unexpected secrets: %v", got)
	}
}

func TestValidateTelegram(t *testing.T) {
	cfg := config.Default()
	cfg.Telegram.Token = "telegram-token"
	if err := cfg.ValidateTelegram(); err == nil {
		t.Fatal("expected error for empty user list")
	}
	cfg.Telegram.Users = []config.User{{TelegramID: 1, Username: "honzajavorek"}}
	if err := cfg.ValidateTelegram(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Telegram.Users[0].Username = " "
	if err := cfg.ValidateTelegram(); err == nil {
		t.Fatal("expected error for blank username")
	}
}

func TestSampleConfigParses(t *testing.T) {
	sample := config.Sample()
	if !strings.Contains(sample, "[trello]") {
		t.Fatal("sample config missing [trello] section")
	}
}
