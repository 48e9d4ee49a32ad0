package config

import "time"

// Default values for configuration
const (
	DefaultPort            = 10000
	DefaultStaticDir       = "client/dist"
	DefaultLogLevel        = "info"
	DefaultLogJSON         = false
	DefaultStatusInterval  = 5 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
)

// keys lists every configuration key; each is bound to its upper-case
// environment variable.
var keys = []string{
	"discord_token",
	"port",
	"static_dir",
	"telegram_token",
	"log_level",
	"log_json",
	"status_interval",
	"shutdown_timeout",
}

var defaults = map[string]any{
	"port":             DefaultPort,
	"static_dir":       DefaultStaticDir,
	"log_level":        DefaultLogLevel,
	"log_json":         DefaultLogJSON,
	"status_interval":  DefaultStatusInterval,
	"shutdown_timeout": DefaultShutdownTimeout,
}
