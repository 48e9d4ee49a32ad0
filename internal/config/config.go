// Package config loads the runtime configuration for guildsite from the
// process environment (and an optional .env file) and validates it.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ErrConfiguration wraps every error returned while loading configuration.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration. Every field maps to an
// upper-case environment variable of the same name (e.g. DISCORD_TOKEN).
type Config struct {
	// DiscordToken has no default. An empty value is accepted here and
	// surfaces as a connect-time failure of the Discord gateway.
	DiscordToken string `mapstructure:"discord_token"`
	Port         int    `mapstructure:"port"       validate:"min=1,max=65535"`
	StaticDir    string `mapstructure:"static_dir" validate:"required"`

	TelegramToken string `mapstructure:"telegram_token"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `mapstructure:"log_json"`

	StatusInterval  time.Duration `mapstructure:"status_interval"  validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=5m"`
}

// Addr returns the listen address for the HTTP server, bound on all interfaces.
func (c *Config) Addr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.Port))
}

// TelegramEnabled reports whether the optional Telegram gateway should run.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) String() string {
	return fmt.Sprintf("port=%d static_dir=%s log_level=%s discord_token_set=%t telegram_enabled=%t",
		c.Port, c.StaticDir, c.LogLevel, c.DiscordToken != "", c.TelegramEnabled())
}
