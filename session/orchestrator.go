package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/somnia-sleep/somnia/analysis"
	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/timer"
)

// SettingsReader supplies the monitoring settings at start.
type SettingsReader interface {
	Get(ctx context.Context) models.MonitoringSettings
}

// HistoryStore commits and lists results.
type HistoryStore interface {
	// Append stamps and stores r. The stamped result is returned even when
	// it could not be persisted.
	Append(ctx context.Context, r models.AnalysisResult) (models.AnalysisResult, error)
	All(ctx context.Context) ([]models.AnalysisResult, error)
	Get(ctx context.Context, id string) (models.AnalysisResult, error)
}

// Config tunes the session timers.
type Config struct {
	// TickInterval is how often the elapsed counter is refreshed. The
	// counter always reports whole seconds since the start.
	TickInterval     time.Duration
	ProgressInterval time.Duration
	ProgressStep     int
}

// DefaultConfig returns the timer settings used by the app.
func DefaultConfig() Config {
	return Config{
		TickInterval:     time.Second,
		ProgressInterval: 500 * time.Millisecond,
		ProgressStep:     5,
	}
}

// Orchestrator owns the session state machine. Only one session exists at a
// time and all methods are safe for concurrent use.
type Orchestrator struct {
	clock    timer.Clock
	sink     EventSink
	settings SettingsReader
	history  HistoryStore
	gateway  analysis.Gateway
	log      *slog.Logger
	adapters map[models.Modality]capture.Adapter
	elapsed  *timer.Schedule
	cur      Session
	cfg      Config

	// transition serializes Start, Stop and Reset. mu guards cur and is
	// also taken by the timer callbacks.
	transition sync.Mutex
	mu         sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the wall clock.
func WithClock(c timer.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithSink sets the receiver of session updates.
func WithSink(s EventSink) Option {
	return func(o *Orchestrator) {
		o.sink = s
	}
}

// WithLogger sets the logger used for downgraded failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithConfig overrides the timer settings. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(o *Orchestrator) {
		if cfg.TickInterval > 0 {
			o.cfg.TickInterval = cfg.TickInterval
		}

		if cfg.ProgressInterval > 0 {
			o.cfg.ProgressInterval = cfg.ProgressInterval
		}

		if cfg.ProgressStep > 0 {
			o.cfg.ProgressStep = cfg.ProgressStep
		}
	}
}

// New returns an idle orchestrator. An audio adapter is required; video and
// wearable adapters are optional.
func New(
	adapters []capture.Adapter,
	settings SettingsReader,
	history HistoryStore,
	gateway analysis.Gateway,
	opts ...Option,
) (*Orchestrator, error) {
	o := &Orchestrator{
		clock:    timer.System,
		sink:     NopSink{},
		settings: settings,
		history:  history,
		gateway:  gateway,
		log:      slog.Default(),
		adapters: make(map[models.Modality]capture.Adapter, len(adapters)),
		cfg:      DefaultConfig(),
	}

	for _, a := range adapters {
		o.adapters[a.Modality()] = a
	}

	if _, ok := o.adapters[models.Audio]; !ok {
		return nil, errNoAudioAdapter
	}

	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// Session returns a copy of the current session.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.cur.Clone()
}

// Start engages audio and then every enabled optional modality. Audio
// failures abort the start and leave the session idle. Optional modalities
// that cannot start are left out without failing the session.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.transition.Lock()
	defer o.transition.Unlock()

	if o.Session().State != Idle {
		return ErrSessionActive
	}

	settings := o.settings.Get(ctx)
	enabled := settings.EnabledModalities()

	audio := o.adapters[models.Audio]

	h, err := o.engage(ctx, audio)
	if err != nil {
		o.sink.Failure(err)
		return err
	}

	handles := map[models.Modality]*capture.Handle{models.Audio: h}
	active := models.NewModalitySet(models.Audio)

	var (
		g  errgroup.Group
		mu sync.Mutex
	)

	for _, m := range enabled.List() {
		if !m.Optional() {
			continue
		}

		a, ok := o.adapters[m]
		if !ok {
			o.log.WarnContext(ctx, "no adapter for enabled modality",
				slog.String("modality", string(m)),
			)

			continue
		}

		if m == models.Wearable && !settings.WearableConnected {
			o.log.InfoContext(ctx, "wearable enabled but not connected, skipping")
			continue
		}

		g.Go(func() error {
			h, err := o.engage(ctx, a)
			if err != nil {
				o.log.WarnContext(ctx, "optional modality unavailable",
					slog.String("modality", string(m)),
					slog.Any("error", err),
				)

				return nil
			}

			mu.Lock()
			handles[m] = h
			active.Add(m)
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	err = o.apply(StartEvent{
		At:      o.clock.Now(),
		Enabled: enabled,
		Active:  active,
		Handles: handles,
	})
	if err != nil {
		return err
	}

	o.log.InfoContext(ctx, "recording started",
		slog.String("modalities", active.String()),
	)

	o.elapsed = timer.Every(o.clock, o.cfg.TickInterval, o.tick)

	return nil
}

// engage asks for permission and starts one capture.
func (o *Orchestrator) engage(
	ctx context.Context,
	a capture.Adapter,
) (*capture.Handle, error) {
	m := a.Modality()

	if !a.RequestPermission(ctx) {
		return nil, ErrPermissionDenied.Fmt(m)
	}

	h, err := a.StartCapture(ctx)
	if err != nil {
		return nil, ErrCaptureStart.Fmt(m).Wrap(err)
	}

	if h == nil {
		return nil, ErrCaptureStart.Fmt(m)
	}

	return h, nil
}

// Stop ends the recording and blocks until the analysis resolves. On success
// the committed result is returned. A result that could not be saved is
// still returned, together with ErrPersistence. An analysis failure returns
// the session to idle and nothing is stored.
func (o *Orchestrator) Stop(ctx context.Context) (*models.AnalysisResult, error) {
	o.transition.Lock()
	defer o.transition.Unlock()

	if o.Session().State != Recording {
		return nil, ErrNotRecording
	}

	// The tick callback takes mu, so the schedule is stopped without
	// holding it.
	o.elapsed.Stop()
	o.elapsed = nil

	cur := o.Session()
	stoppedAt := o.clock.Now()

	artifacts, active := o.stopCaptures(ctx, cur)

	if err := o.apply(StopEvent{Active: active, Artifacts: artifacts}); err != nil {
		return nil, err
	}

	progress := timer.Every(o.clock, o.cfg.ProgressInterval, o.advanceProgress)

	result, err := o.analyze(ctx, analysis.Request{
		RecordedAt: cur.StartedAt,
		Duration:   stoppedAt.Sub(cur.StartedAt),
		Modalities: active,
		Artifacts:  artifacts,
	})

	progress.Stop()

	if err != nil {
		err = ErrAnalysis.Wrap(err)

		o.log.ErrorContext(ctx, "analysis failed", slog.Any("error", err))
		_ = o.apply(AnalysisFailedEvent{})
		o.sink.Failure(err)

		return nil, err
	}

	committed, perr := o.history.Append(ctx, *result)

	if err := o.apply(AnalysisSucceededEvent{Result: &committed}); err != nil {
		return nil, err
	}

	if perr != nil {
		perr = ErrPersistence.Wrap(perr)
		o.sink.Failure(perr)

		return committed.Clone(), perr
	}

	o.log.InfoContext(ctx, "analysis complete",
		slog.String("id", committed.ID),
		slog.String("severity", string(committed.Severity)),
	)

	return committed.Clone(), nil
}

// stopCaptures stops every live capture concurrently. Optional modalities
// that fail to stop drop out of the returned set. Audio stays in it since
// the analysis needs the baseline even without its artifact.
func (o *Orchestrator) stopCaptures(
	ctx context.Context,
	cur Session,
) (map[models.Modality]*capture.Artifact, models.ModalitySet) {
	artifacts := make(map[models.Modality]*capture.Artifact, len(cur.Handles))
	active := cur.Active.Clone()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for m, h := range cur.Handles {
		a := o.adapters[m]

		g.Go(func() error {
			art, err := a.StopCapture(ctx, h)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = append(errs, ErrCaptureStop.Fmt(m).Wrap(err))

				if m.Optional() {
					active.Remove(m)
				}

				return nil
			}

			artifacts[m] = art

			return nil
		})
	}

	_ = g.Wait()

	for _, err := range errs {
		o.log.WarnContext(ctx, "capture did not stop cleanly", slog.Any("error", err))
		o.sink.Failure(err)
	}

	return artifacts, active
}

func (o *Orchestrator) analyze(
	ctx context.Context,
	req analysis.Request,
) (*models.AnalysisResult, error) {
	r, err := o.gateway.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	if r == nil {
		return nil, errMissingResult
	}

	if r.VideoEnabled && !req.Modalities.Has(models.Video) {
		return nil, errModalityMismatch.Fmt(models.Video)
	}

	if r.WearableEnabled && !req.Modalities.Has(models.Wearable) {
		return nil, errModalityMismatch.Fmt(models.Wearable)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Reset dismisses the current result and returns to idle.
func (o *Orchestrator) Reset() error {
	o.transition.Lock()
	defer o.transition.Unlock()

	return o.apply(ResetEvent{})
}

// History lists past results, newest first.
func (o *Orchestrator) History(ctx context.Context) ([]models.AnalysisResult, error) {
	return o.history.All(ctx)
}

// HistoryEntry returns one past result.
func (o *Orchestrator) HistoryEntry(
	ctx context.Context,
	id string,
) (models.AnalysisResult, error) {
	return o.history.Get(ctx, id)
}

// apply runs e through Transition and publishes the new state.
func (o *Orchestrator) apply(e Event) error {
	snap, err := o.commit(e)
	if err != nil {
		return err
	}

	o.sink.StateChanged(snap)

	return nil
}

// commit stores the session that results from e and returns a copy of it.
func (o *Orchestrator) commit(e Event) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := Transition(o.cur, e)
	if err != nil {
		return Session{}, err
	}

	o.cur = next

	return next.Clone(), nil
}

func (o *Orchestrator) tick(at time.Time) {
	o.mu.Lock()

	prev := o.cur.ElapsedSeconds

	next, err := Transition(o.cur, TickEvent{At: at})
	if err != nil || next.ElapsedSeconds == prev {
		o.mu.Unlock()
		return
	}

	o.cur = next

	o.mu.Unlock()

	o.sink.Elapsed(next.ElapsedSeconds)
}

func (o *Orchestrator) advanceProgress(time.Time) {
	o.mu.Lock()

	prev := o.cur.Progress

	next, err := Transition(o.cur, ProgressEvent{Percent: prev + o.cfg.ProgressStep})
	if err != nil || next.Progress == prev {
		o.mu.Unlock()
		return
	}

	o.cur = next

	o.mu.Unlock()

	o.sink.AnalysisProgress(next.Progress)
}
