// Package config loads somnia's settings from the config file, the
// environment and command-line flags
package config

import (
	"io"
	"os"
	"time"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Analysis      AnalysisConfig     `mapstructure:"analysis"`
		Storage       StorageConfig      `mapstructure:"storage"`
		Session       SessionConfig      `mapstructure:"session"`
		Capture       CaptureConfig      `mapstructure:"capture"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		Hooks         HooksConfig        `mapstructure:"hooks"`
		Log           LogConfig          `mapstructure:"log"`
	}

	// AnalysisConfig selects and configures the analysis gateway.
	AnalysisConfig struct {
		Mode    string        `mapstructure:"mode"`
		BaseURL string        `mapstructure:"base_url"`
		Token   string        `mapstructure:"token"`
		UserID  string        `mapstructure:"user_id"`
		Timeout time.Duration `mapstructure:"timeout"`
		Retries int           `mapstructure:"retries"`
	}

	// StorageConfig selects the key-value backend for history and settings.
	StorageConfig struct {
		Driver    string `mapstructure:"driver"`
		Path      string `mapstructure:"path"`
		RedisAddr string `mapstructure:"redis_addr"`
		KeyPrefix string `mapstructure:"key_prefix"`
		RedisDB   int    `mapstructure:"redis_db"`
	}

	// SessionConfig tunes the recording and analysis timers.
	SessionConfig struct {
		TickInterval     time.Duration `mapstructure:"tick_interval"`
		ProgressInterval time.Duration `mapstructure:"progress_interval"`
		ProgressStep     int           `mapstructure:"progress_step"`
	}

	// CaptureConfig holds capture adapter settings.
	CaptureConfig struct {
		RecordingsDir          string        `mapstructure:"recordings_dir"`
		AudioSampleRate        int           `mapstructure:"audio_sample_rate"`
		WearableSampleInterval time.Duration `mapstructure:"wearable_sample_interval"`
	}

	// NotificationConfig holds notification settings.
	NotificationConfig struct {
		Enabled bool `mapstructure:"enabled"`
	}

	// HooksConfig holds commands run on session events.
	HooksConfig struct {
		ResultCmd string `mapstructure:"result_cmd"`
	}

	// LogConfig controls the log file.
	LogConfig struct {
		Level      string `mapstructure:"level"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.4.0"

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// New creates a Config, applies opts in order and validates the result.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

// HistoryKey is the storage key of the sleep history.
func (c *Config) HistoryKey() string {
	return c.Storage.KeyPrefix + "sleep_history"
}

// SettingsKey is the storage key of the monitoring settings.
func (c *Config) SettingsKey() string {
	return c.Storage.KeyPrefix + "monitoring_settings"
}
