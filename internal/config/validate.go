package config

import (
	"log/slog"
	"net/url"
	"slices"
	"time"
)

var (
	analysisModes  = []string{"local", "remote", "auto"}
	storageDrivers = []string{"bolt", "redis", "memory"}

	minTickInterval = 10 * time.Millisecond
	minSampleRate   = 1000
	maxSampleRate   = 48000
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateSession(); err != nil {
		return err
	}

	if err := c.validateCapture(); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return errInvalidLogLevel.Fmt(c.Log.Level)
	}

	return nil
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis

	if !slices.Contains(analysisModes, a.Mode) {
		return errInvalidMode.Fmt(a.Mode)
	}

	if a.Mode == "local" {
		return nil
	}

	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errInvalidBaseURL.Fmt(a.BaseURL)
	}

	if a.Timeout <= 0 {
		return errNonPositive.Fmt("analysis.timeout")
	}

	if a.Retries < 0 {
		return errNegative.Fmt("analysis.retries")
	}

	return nil
}

func (c *Config) validateStorage() error {
	s := c.Storage

	if !slices.Contains(storageDrivers, s.Driver) {
		return errInvalidDriver.Fmt(s.Driver)
	}

	if s.Driver == "redis" && s.RedisAddr == "" {
		return errMissingRedisAddr
	}

	return nil
}

func (c *Config) validateSession() error {
	s := c.Session

	if s.TickInterval < minTickInterval {
		return errIntervalTooShort.Fmt("session.tick_interval", minTickInterval)
	}

	if s.ProgressInterval < minTickInterval {
		return errIntervalTooShort.Fmt("session.progress_interval", minTickInterval)
	}

	if s.ProgressStep < 1 || s.ProgressStep > 100 {
		return errInvalidProgressStep.Fmt(s.ProgressStep)
	}

	return nil
}

func (c *Config) validateCapture() error {
	rate := c.Capture.AudioSampleRate
	if rate < minSampleRate || rate > maxSampleRate {
		return errInvalidSampleRate.Fmt(minSampleRate, maxSampleRate, rate)
	}

	if c.Capture.WearableSampleInterval <= 0 {
		return errNonPositive.Fmt("capture.wearable_sample_interval")
	}

	return nil
}
