package tts

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads client configuration from Viper, layering any
// values present in the config file or bound flags over the defaults.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	// Backend settings
	if viper.IsSet("server_url") {
		cfg.ServerURL = viper.GetString("server_url")
	}
	if viper.IsSet("request_timeout") {
		cfg.RequestTimeout = viper.GetDuration("request_timeout")
	}
	if viper.IsSet("requests_per_minute") {
		cfg.RequestsPerMinute = viper.GetInt("requests_per_minute")
	}
	if viper.IsSet("max_audio_mb") {
		cfg.MaxAudioMB = viper.GetInt("max_audio_mb")
	}

	// Selection defaults
	if viper.IsSet("language") {
		cfg.Language = viper.GetString("language")
	}
	if viper.IsSet("languages") {
		cfg.Languages = viper.GetStringSlice("languages")
	}
	if viper.IsSet("voice") {
		cfg.Voice = viper.GetString("voice")
	}

	// Prosody defaults
	if viper.IsSet("rate") {
		cfg.Rate = viper.GetInt("rate")
	}
	if viper.IsSet("pitch") {
		cfg.Pitch = viper.GetInt("pitch")
	}
	if viper.IsSet("volume") {
		cfg.Volume = viper.GetInt("volume")
	}

	// Preview cache settings
	if viper.IsSet("cache_enabled") {
		cfg.CacheEnabled = viper.GetBool("cache_enabled")
	}
	if viper.IsSet("cache_capacity_mb") {
		cfg.CacheCapacityMB = viper.GetInt("cache_capacity_mb")
	}

	// Logging
	if viper.IsSet("debug") {
		cfg.Debug = viper.GetBool("debug")
	}
	if viper.IsSet("log_file") {
		cfg.LogFile = ExpandPath(viper.GetString("log_file"))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
