// Package config loads server settings from file and environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// BotFill controls automatic seat filling in under-populated lobbies.
type BotFill struct {
	Enabled      bool `mapstructure:"enabled"`
	DelaySeconds int  `mapstructure:"delay_seconds"`
}

// Pacing holds UI pacing delays applied by the transport when relaying
// reveal and cleanup events. The engine itself resolves synchronously.
type Pacing struct {
	RevealDelayMs  int `mapstructure:"reveal_delay_ms"`
	CleanupDelayMs int `mapstructure:"cleanup_delay_ms"`
}

// Config is the standalone server configuration.
type Config struct {
	Addr     string  `mapstructure:"addr"`
	LogLevel string  `mapstructure:"log_level"`
	BotFill  BotFill `mapstructure:"bot_fill"`
	Pacing   Pacing  `mapstructure:"pacing"`
}

// Load reads configuration from the given file path (optional) with
// TRUF_-prefixed environment variables taking precedence over defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("bot_fill.enabled", false)
	v.SetDefault("bot_fill.delay_seconds", 5)
	v.SetDefault("pacing.reveal_delay_ms", 2000)
	v.SetDefault("pacing.cleanup_delay_ms", 2000)

	v.SetEnvPrefix("TRUF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
