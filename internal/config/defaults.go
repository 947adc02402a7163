package config

const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.14; rv:72.0) " +
		"Gecko/20100101 Firefox/72.0"
	defaultRequestTimeout   = 30
	defaultRetryMax         = 2
	defaultArchiveAfterDays = 365 * 2
	defaultInboxSchedule    = "0 5 * * *"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Scraper: Scraper{
			UserAgent:      defaultUserAgent,
			RequestTimeout: defaultRequestTimeout,
			RetryMax:       defaultRetryMax,
		},
		Inbox: Inbox{
			ArchiveAfterDays: defaultArchiveAfterDays,
			Schedule:         defaultInboxSchedule,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
