package common

import (
	"os"

	"emperror.dev/errors"
)

// RunConfig holds everything read from the environment at startup.
type RunConfig struct {
	BotToken string
	ClientID string
	GuildID  string

	// Channel recurring polls get posted in. Recurring polls are disabled
	// when empty.
	PollChannelID string

	// Fallback timezone for recurring schedules that don't set their own.
	DefaultTimezone string

	// Optional YAML file with extra poll templates, merged over the
	// built-in catalog.
	TemplateFile string

	LogLevel    string
	LogFile     string
	MetricsAddr string
	SentryDSN   string
}

// LoadRunConfig reads the run config from the environment. The bot token,
// client id and guild id are required, everything else has a default or is
// optional.
func LoadRunConfig() (*RunConfig, error) {
	conf := &RunConfig{
		BotToken:        os.Getenv("BOT_TOKEN"),
		ClientID:        os.Getenv("CLIENT_ID"),
		GuildID:         os.Getenv("GUILD_ID"),
		PollChannelID:   os.Getenv("POLL_CHANNEL"),
		DefaultTimezone: envOrDefault("POLL_TIMEZONE", "America/New_York"),
		TemplateFile:    os.Getenv("POLL_TEMPLATE_FILE"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFile:         os.Getenv("LOG_FILE"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
	}

	if conf.BotToken == "" {
		return nil, errors.New("BOT_TOKEN environment variable not set")
	}
	if conf.ClientID == "" {
		return nil, errors.New("CLIENT_ID environment variable not set")
	}
	if conf.GuildID == "" {
		return nil, errors.New("GUILD_ID environment variable not set")
	}

	return conf, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
