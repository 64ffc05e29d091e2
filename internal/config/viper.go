package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SOMNIA"

const (
	keyAnalysisMode         = "analysis.mode"
	keyAnalysisBaseURL      = "analysis.base_url"
	keyAnalysisToken        = "analysis.token"
	keyAnalysisUserID       = "analysis.user_id"
	keyAnalysisTimeout      = "analysis.timeout"
	keyAnalysisRetries      = "analysis.retries"
	keyStorageDriver        = "storage.driver"
	keyStoragePath          = "storage.path"
	keyStorageRedisAddr     = "storage.redis_addr"
	keyStorageRedisDB       = "storage.redis_db"
	keyStorageKeyPrefix     = "storage.key_prefix"
	keySessionTickInterval  = "session.tick_interval"
	keySessionProgressEvery = "session.progress_interval"
	keySessionProgressStep  = "session.progress_step"
	keyCaptureRecordingsDir = "capture.recordings_dir"
	keyCaptureSampleRate    = "capture.audio_sample_rate"
	keyCaptureWearableEvery = "capture.wearable_sample_interval"
	keyNotificationsEnabled = "notifications.enabled"
	keyHooksResultCmd       = "hooks.result_cmd"
	keyLogLevel             = "log.level"
	keyLogMaxSizeMB         = "log.max_size_mb"
	keyLogMaxBackups        = "log.max_backups"
)

// WithViperConfig returns an Option that loads configuration from the YAML
// file at configPath, writing the defaults there first if it does not exist.
// SOMNIA_* environment variables override file values; a nested key maps to
// its upper-cased path joined by underscores (SOMNIA_ANALYSIS_BASE_URL).
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v, c)

		err := v.ReadInConfig()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return errReadConfig.Wrap(err)
			}

			if err := v.WriteConfig(); err != nil {
				return errWriteConfig.Wrap(err)
			}
		}

		// Environment overrides are bound after the default file is
		// written and never reach disk.
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		return v.Unmarshal(c)
	}
}

// setupViper registers the defaults and any values already chosen through
// the first-run prompt.
func setupViper(v *viper.Viper, c *Config) {
	v.SetDefault(keyAnalysisMode, "local")
	v.SetDefault(keyAnalysisBaseURL, "http://localhost:8000")
	v.SetDefault(keyAnalysisToken, "demo-token")
	v.SetDefault(keyAnalysisUserID, "demo_user")
	v.SetDefault(keyAnalysisTimeout, "30s")
	v.SetDefault(keyAnalysisRetries, 2)
	v.SetDefault(keyStorageDriver, "bolt")
	v.SetDefault(keyStoragePath, "")
	v.SetDefault(keyStorageRedisAddr, "localhost:6379")
	v.SetDefault(keyStorageRedisDB, 0)
	v.SetDefault(keyStorageKeyPrefix, "somnia_")
	v.SetDefault(keySessionTickInterval, "1s")
	v.SetDefault(keySessionProgressEvery, "500ms")
	v.SetDefault(keySessionProgressStep, 5)
	v.SetDefault(keyCaptureRecordingsDir, "")
	v.SetDefault(keyCaptureSampleRate, 8000)
	v.SetDefault(keyCaptureWearableEvery, "30s")
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keyHooksResultCmd, "")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogMaxSizeMB, 10)
	v.SetDefault(keyLogMaxBackups, 3)

	if c.Analysis.Mode != "" {
		v.Set(keyAnalysisMode, c.Analysis.Mode)
		v.Set(keyAnalysisBaseURL, c.Analysis.BaseURL)
	}

	if c.Storage.Driver != "" {
		v.Set(keyStorageDriver, c.Storage.Driver)
	}
}
