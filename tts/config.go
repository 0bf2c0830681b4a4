package tts

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
)

// Config contains all client configuration options.
type Config struct {
	// Backend settings
	ServerURL         string        `yaml:"server_url" env:"TTSDECK_SERVER_URL" envDefault:"http://localhost:8000/api"`
	RequestTimeout    time.Duration `yaml:"request_timeout" env:"TTSDECK_REQUEST_TIMEOUT" envDefault:"30s"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"TTSDECK_REQUESTS_PER_MINUTE" envDefault:"50"`
	MaxAudioMB        int           `yaml:"max_audio_mb" env:"TTSDECK_MAX_AUDIO_MB" envDefault:"50"`

	// Selection defaults
	Language  string   `yaml:"language" env:"TTSDECK_LANGUAGE" envDefault:"en"`
	Languages []string `yaml:"languages" env:"TTSDECK_LANGUAGES" envSeparator:","`
	Voice     string   `yaml:"voice" env:"TTSDECK_VOICE"`

	// Prosody defaults
	Rate   int `yaml:"rate" env:"TTSDECK_RATE" envDefault:"0"`
	Pitch  int `yaml:"pitch" env:"TTSDECK_PITCH" envDefault:"0"`
	Volume int `yaml:"volume" env:"TTSDECK_VOLUME" envDefault:"0"`

	// Preview cache settings
	CacheEnabled    bool `yaml:"cache_enabled" env:"TTSDECK_CACHE_ENABLED" envDefault:"true"`
	CacheCapacityMB int  `yaml:"cache_capacity_mb" env:"TTSDECK_CACHE_CAPACITY_MB" envDefault:"16"`

	// Logging
	Debug   bool   `yaml:"debug" env:"TTSDECK_DEBUG" envDefault:"false"`
	LogFile string `yaml:"log_file" env:"TTSDECK_LOG_FILE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ServerURL:         "http://localhost:8000/api",
		RequestTimeout:    30 * time.Second,
		RequestsPerMinute: 50,
		MaxAudioMB:        50,

		Language:  "en",
		Languages: DefaultLanguages(),

		CacheEnabled:    true,
		CacheCapacityMB: 16,
	}
}

// DefaultLanguages returns the language tags offered by the picker when the
// config does not override them.
func DefaultLanguages() []string {
	return []string{"en", "ru", "de", "fr", "es", "it", "pt", "ja", "ko", "zh"}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("%w: server_url must be set", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive, got %v", ErrInvalidConfig, c.RequestTimeout)
	}
	if c.RequestsPerMinute < 1 || c.RequestsPerMinute > 600 {
		return fmt.Errorf("%w: requests_per_minute must be between 1 and 600, got %d", ErrInvalidConfig, c.RequestsPerMinute)
	}
	if c.MaxAudioMB < 1 {
		return fmt.Errorf("%w: max_audio_mb must be at least 1, got %d", ErrInvalidConfig, c.MaxAudioMB)
	}
	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("%w: language must be set", ErrInvalidConfig)
	}
	if c.Rate < RateMin || c.Rate > RateMax {
		return fmt.Errorf("%w: rate must be between %d and %d, got %d", ErrInvalidConfig, RateMin, RateMax, c.Rate)
	}
	if c.Pitch < PitchMin || c.Pitch > PitchMax {
		return fmt.Errorf("%w: pitch must be between %d and %d, got %d", ErrInvalidConfig, PitchMin, PitchMax, c.Pitch)
	}
	if c.Volume < VolumeMin || c.Volume > VolumeMax {
		return fmt.Errorf("%w: volume must be between %d and %d, got %d", ErrInvalidConfig, VolumeMin, VolumeMax, c.Volume)
	}
	if c.CacheEnabled && c.CacheCapacityMB < 1 {
		return fmt.Errorf("%w: cache_capacity_mb must be at least 1, got %d", ErrInvalidConfig, c.CacheCapacityMB)
	}
	return nil
}

// ClientConfig derives the backend client configuration.
func (c *Config) ClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           c.ServerURL,
		Timeout:           c.RequestTimeout,
		RequestsPerMinute: c.RequestsPerMinute,
		MaxAudioBytes:     int64(c.MaxAudioMB) * 1024 * 1024,
	}
}

// Prosody derives the default prosody offsets, clamped into range.
func (c *Config) Prosody() Prosody {
	return Prosody{Rate: c.Rate, Pitch: c.Pitch, Volume: c.Volume}.Clamped()
}

// ExpandPath expands a leading ~ and environment-free relative paths into an
// absolute path. Used for log and cache locations from the config file.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return expanded
	}
	return abs
}
