package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/somnia-sleep/somnia/analysis"
	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/history"
	"github.com/somnia-sleep/somnia/internal/config"
	"github.com/somnia-sleep/somnia/internal/logging"
	"github.com/somnia-sleep/somnia/internal/pathutil"
	"github.com/somnia-sleep/somnia/session"
	"github.com/somnia-sleep/somnia/settings"
	"github.com/somnia-sleep/somnia/store"
)

// env holds the collaborators shared by the commands.
type env struct {
	cfg      *config.Config
	paths    *pathutil.Paths
	log      *slog.Logger
	kv       store.KV
	history  *history.Store
	settings *settings.Store
	devices  *capture.Devices
	closers  []io.Closer
}

// setup loads the configuration and opens the stores. The caller must
// Close the returned env.
func setup(ctx *cli.Context) (*env, error) {
	paths, err := pathutil.Resolve()
	if err != nil {
		return nil, err
	}

	cfg, err := config.New(
		config.WithDotEnv(".env", paths.DotEnvFile),
		config.WithPromptConfig(paths.ConfigFile),
		config.WithViperConfig(paths.ConfigFile),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:   cfg,
		paths: paths,
	}

	log, logCloser, err := logging.New(logging.Options{
		Path:       paths.LogFile,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, err
	}

	e.log = log
	e.closers = append(e.closers, logCloser)

	slog.SetDefault(log)

	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = paths.DBFile
	}

	kv, err := store.Open(ctx.Context, store.Options{
		Driver:    cfg.Storage.Driver,
		Path:      dbPath,
		RedisAddr: cfg.Storage.RedisAddr,
		RedisDB:   cfg.Storage.RedisDB,
	})
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	e.kv = kv
	e.closers = append(e.closers, kv)

	e.history = history.New(kv,
		history.WithKey(cfg.HistoryKey()),
		history.WithLogger(log),
	)

	e.settings = settings.New(kv,
		settings.WithKey(cfg.SettingsKey()),
		settings.WithLogger(log),
	)

	e.devices = capture.NewDevices()
	e.restoreDevice(ctx.Context)

	return e, nil
}

// restoreDevice re-pairs the wearable recorded in the settings, since device
// connections do not outlive the process.
func (e *env) restoreDevice(ctx context.Context) {
	s := e.settings.Get(ctx)
	if !s.WearableConnected || s.WearableDeviceName == "" {
		return
	}

	if _, err := e.devices.Connect(ctx, s.WearableDeviceName); err != nil {
		e.log.WarnContext(ctx, "unable to restore wearable connection",
			slog.String("device", s.WearableDeviceName),
			slog.Any("error", err),
		)
	}
}

// client returns the inference server client.
func (e *env) client() *analysis.Client {
	a := e.cfg.Analysis

	return analysis.NewClient(a.BaseURL, a.Token,
		analysis.WithUserID(a.UserID),
		analysis.WithTimeout(a.Timeout),
		analysis.WithRetries(a.Retries),
		analysis.WithClientLogger(e.log),
	)
}

// gateway returns the analysis strategy selected by the config.
func (e *env) gateway() (analysis.Gateway, error) {
	seed := uint64(time.Now().UnixNano())

	return analysis.ForMode(
		e.cfg.Analysis.Mode,
		e.client(),
		analysis.NewGenerator(seed),
	)
}

// adapters returns one capture adapter per modality.
func (e *env) adapters() []capture.Adapter {
	dir := e.cfg.Capture.RecordingsDir
	if dir == "" {
		dir = e.paths.RecordingsDir
	}

	seed := uint64(time.Now().UnixNano())

	return []capture.Adapter{
		capture.NewAudio(dir,
			capture.WithSampleRate(e.cfg.Capture.AudioSampleRate),
		),
		capture.NewVideo(capture.Grant, time.Now),
		capture.NewWearable(e.devices,
			capture.WithTelemetrySource(capture.NewSimulatedSource(seed)),
			capture.WithSampleInterval(e.cfg.Capture.WearableSampleInterval),
		),
	}
}

// orchestrator builds a session orchestrator reporting to sink.
func (e *env) orchestrator(sink session.EventSink) (*session.Orchestrator, error) {
	gw, err := e.gateway()
	if err != nil {
		return nil, err
	}

	return session.New(e.adapters(), e.settings, e.history, gw,
		session.WithSink(sink),
		session.WithLogger(e.log),
		session.WithConfig(session.Config{
			TickInterval:     e.cfg.Session.TickInterval,
			ProgressInterval: e.cfg.Session.ProgressInterval,
			ProgressStep:     e.cfg.Session.ProgressStep,
		}),
	)
}

// Close releases the store and the log file.
func (e *env) Close() error {
	var errs []error

	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}

	return errors.Join(errs...)
}
