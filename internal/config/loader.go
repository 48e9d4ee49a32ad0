package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read when present; variables already set in the
// environment take precedence over it.
const DefaultEnvFile = ".env"

// Load builds the configuration from:
// 1. Default values
// 2. Optional env files (DefaultEnvFile when none are given)
// 3. Environment variables
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read env file %s: %v", ErrConfiguration, f, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("%w: failed to bind %s: %v", ErrConfiguration, key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse environment: %v", ErrConfiguration, err)
	}

	cfg.DiscordToken = strings.TrimSpace(cfg.DiscordToken)
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}
