package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somnia-sleep/somnia/analysis"
	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/history"
	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/store"
	"github.com/somnia-sleep/somnia/timer"
)

type fakeAdapter struct {
	startErr  error
	stopErr   error
	modality  models.Modality
	denied    bool
	nilHandle bool
	asked     atomic.Int32
	started   atomic.Int32
	stopped   atomic.Int32
}

func newFakeAdapter(m models.Modality) *fakeAdapter {
	return &fakeAdapter{modality: m}
}

func (f *fakeAdapter) Modality() models.Modality {
	return f.modality
}

func (f *fakeAdapter) RequestPermission(context.Context) bool {
	f.asked.Add(1)
	return !f.denied
}

func (f *fakeAdapter) StartCapture(context.Context) (*capture.Handle, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}

	if f.nilHandle {
		return nil, nil
	}

	n := f.started.Add(1)

	return &capture.Handle{
		ID:       string(f.modality) + "-" + string(rune('0'+n)),
		Modality: f.modality,
	}, nil
}

func (f *fakeAdapter) StopCapture(
	_ context.Context,
	h *capture.Handle,
) (*capture.Artifact, error) {
	f.stopped.Add(1)

	if f.stopErr != nil {
		return nil, f.stopErr
	}

	a := &capture.Artifact{Modality: f.modality, Ref: h.ID}

	if f.modality == models.Wearable {
		a.Telemetry = []capture.Sample{
			{HeartRate: 61, SpO2: 96, HRV: 45, SkinTemp: 36.4},
			{HeartRate: 63, SpO2: 95, HRV: 47, SkinTemp: 36.5},
		}
	}

	return a, nil
}

type fakeSettings struct {
	s  models.MonitoringSettings
	mu sync.Mutex
}

func (f *fakeSettings) Get(context.Context) models.MonitoringSettings {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.s
}

func (f *fakeSettings) set(s models.MonitoringSettings) {
	f.mu.Lock()
	f.s = s
	f.mu.Unlock()
}

type recordingSink struct {
	states   []State
	elapsed  []int
	progress []int
	failures []error
	mu       sync.Mutex
}

func (r *recordingSink) StateChanged(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states = append(r.states, s.State)
}

func (r *recordingSink) Elapsed(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.elapsed = append(r.elapsed, n)
}

func (r *recordingSink) AnalysisProgress(p int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = append(r.progress, p)
}

func (r *recordingSink) Failure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failures = append(r.failures, err)
}

func (r *recordingSink) snapshot() (states []State, elapsed, progress []int, failures []error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]State(nil), r.states...),
		append([]int(nil), r.elapsed...),
		append([]int(nil), r.progress...),
		append([]error(nil), r.failures...)
}

type brokenKV struct {
	*store.Memory
}

func (brokenKV) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

type harness struct {
	orch     *Orchestrator
	clock    *timer.ManualClock
	sink     *recordingSink
	settings *fakeSettings
	history  *history.Store
	audio    *fakeAdapter
	video    *fakeAdapter
	wearable *fakeAdapter
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	gateway analysis.Gateway
	kv      store.KV
}

func withGateway(g analysis.Gateway) harnessOption {
	return func(c *harnessConfig) {
		c.gateway = g
	}
}

func withKV(kv store.KV) harnessOption {
	return func(c *harnessConfig) {
		c.kv = kv
	}
}

func newHarness(
	t *testing.T,
	settings models.MonitoringSettings,
	opts ...harnessOption,
) *harness {
	t.Helper()

	cfg := harnessConfig{
		gateway: analysis.NewGenerator(11),
		kv:      store.NewMemory(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	h := &harness{
		clock:    timer.NewManualClock(time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)),
		sink:     &recordingSink{},
		settings: &fakeSettings{s: settings},
		audio:    newFakeAdapter(models.Audio),
		video:    newFakeAdapter(models.Video),
		wearable: newFakeAdapter(models.Wearable),
	}

	h.history = history.New(cfg.kv, history.WithClock(h.clock.Now))

	orch, err := New(
		[]capture.Adapter{h.audio, h.video, h.wearable},
		h.settings,
		h.history,
		cfg.gateway,
		WithClock(h.clock),
		WithSink(h.sink),
		WithConfig(Config{
			TickInterval:     time.Second,
			ProgressInterval: 100 * time.Millisecond,
			ProgressStep:     10,
		}),
	)
	require.NoError(t, err)

	h.orch = orch

	return h
}

func (h *harness) waitElapsed(t *testing.T, want int) {
	t.Helper()

	assert.Eventually(t, func() bool {
		return h.orch.Session().ElapsedSeconds == want
	}, time.Second, time.Millisecond)
}

func allEnabled() models.MonitoringSettings {
	return models.MonitoringSettings{
		AudioEnabled:       true,
		VideoEnabled:       true,
		WearableEnabled:    true,
		WearableConnected:  true,
		WearableDeviceName: "Mi Band 7",
	}
}

func TestNewRequiresAudio(t *testing.T) {
	_, err := New(
		[]capture.Adapter{newFakeAdapter(models.Video)},
		&fakeSettings{},
		nil,
		nil,
	)

	assert.ErrorIs(t, err, errNoAudioAdapter)
}

func TestRecordAndAnalyze(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, models.DefaultSettings())

	require.NoError(t, h.orch.Start(ctx))

	s := h.orch.Session()
	assert.Equal(t, Recording, s.State)
	assert.True(t, s.Active.Equal(models.NewModalitySet(models.Audio)))
	assert.Contains(t, s.Handles, models.Audio)

	h.clock.Advance(3 * time.Second)
	h.waitElapsed(t, 3)

	result, err := h.orch.Stop(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, h.clock.Now(), result.Timestamp)
	assert.False(t, result.VideoEnabled)
	assert.False(t, result.WearableEnabled)
	assert.InDelta(t, 3.0/3600, result.DurationHours, 1e-4)

	s = h.orch.Session()
	assert.Equal(t, ResultAvailable, s.State)
	assert.Equal(t, 3, s.ElapsedSeconds)
	assert.Equal(t, result.ID, s.Result.ID)
	assert.Nil(t, s.Handles)

	entries, err := h.orch.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.ID, entries[0].ID)

	entry, err := h.orch.HistoryEntry(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Severity, entry.Severity)

	states, elapsed, _, failures := h.sink.snapshot()
	assert.Equal(t, []State{Recording, Analyzing, ResultAvailable}, states)
	assert.Equal(t, []int{1, 2, 3}, elapsed)
	assert.Empty(t, failures)

	assert.Equal(t, int32(1), h.audio.stopped.Load())
	assert.Zero(t, h.video.asked.Load())
}

func TestNoTicksAfterStop(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, models.DefaultSettings())

	require.NoError(t, h.orch.Start(ctx))

	h.clock.Advance(2 * time.Second)
	h.waitElapsed(t, 2)

	_, err := h.orch.Stop(ctx)
	require.NoError(t, err)

	h.clock.Advance(10 * time.Second)

	assert.Equal(t, 2, h.orch.Session().ElapsedSeconds)

	_, elapsed, _, _ := h.sink.snapshot()
	assert.Equal(t, []int{1, 2}, elapsed)
}

func TestStartWhileActiveIsNoOp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, models.DefaultSettings())

	require.NoError(t, h.orch.Start(ctx))

	err := h.orch.Start(ctx)
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, int32(1), h.audio.started.Load())
	assert.Equal(t, Recording, h.orch.Session().State)

	_, err = h.orch.Stop(ctx)
	require.NoError(t, err)

	err = h.orch.Start(ctx)
	assert.ErrorIs(t, err, ErrSessionActive, "a pending result blocks a new session")
}

func TestStopWhenNotRecordingIsNoOp(t *testing.T) {
	h := newHarness(t, models.DefaultSettings())

	result, err := h.orch.Stop(context.Background())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.Zero(t, h.audio.stopped.Load())

	states, _, _, _ := h.sink.snapshot()
	assert.Empty(t, states)
}

func TestAudioPermissionDenied(t *testing.T) {
	h := newHarness(t, allEnabled())
	h.audio.denied = true

	err := h.orch.Start(context.Background())
	require.ErrorIs(t, err, ErrPermissionDenied)

	s := h.orch.Session()
	assert.Equal(t, Idle, s.State)
	assert.Empty(t, s.Handles)

	assert.Zero(t, h.audio.started.Load())
	assert.Zero(t, h.video.asked.Load())
	assert.Zero(t, h.wearable.asked.Load())

	_, _, _, failures := h.sink.snapshot()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrPermissionDenied)
}

func TestAudioStartFailure(t *testing.T) {
	h := newHarness(t, allEnabled())
	h.audio.startErr = errors.New("microphone busy")

	err := h.orch.Start(context.Background())
	require.ErrorIs(t, err, ErrCaptureStart)
	assert.Contains(t, err.Error(), "microphone busy")

	assert.Equal(t, Idle, h.orch.Session().State)
	assert.Zero(t, h.video.started.Load())
}

func TestAudioNilHandleFailsStart(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, allEnabled())
	h.audio.nilHandle = true

	var err error

	require.NotPanics(t, func() {
		err = h.orch.Start(ctx)
	})
	require.ErrorIs(t, err, ErrCaptureStart)

	s := h.orch.Session()
	assert.Equal(t, Idle, s.State)
	assert.Empty(t, s.Handles)
	assert.Zero(t, h.video.asked.Load())

	h.audio.nilHandle = false

	require.NoError(t, h.orch.Start(ctx), "the orchestrator must stay usable")
}

func TestVideoNilHandleDowngrades(t *testing.T) {
	ctx := context.Background()
	settings := models.DefaultSettings()
	settings.VideoEnabled = true

	h := newHarness(t, settings)
	h.video.nilHandle = true

	var err error

	require.NotPanics(t, func() {
		err = h.orch.Start(ctx)
	})
	require.NoError(t, err)

	s := h.orch.Session()
	assert.Equal(t, Recording, s.State)
	assert.True(t, s.Active.Equal(models.NewModalitySet(models.Audio)))
	assert.NotContains(t, s.Handles, models.Video)

	result, err := h.orch.Stop(ctx)
	require.NoError(t, err)

	assert.False(t, result.VideoEnabled)
	assert.Zero(t, h.video.stopped.Load())
}

func TestVideoPermissionDeniedDowngrades(t *testing.T) {
	ctx := context.Background()
	settings := models.DefaultSettings()
	settings.VideoEnabled = true

	h := newHarness(t, settings)
	h.video.denied = true

	require.NoError(t, h.orch.Start(ctx))

	s := h.orch.Session()
	assert.True(t, s.Active.Equal(models.NewModalitySet(models.Audio)))
	assert.True(t, s.Enabled.Has(models.Video))

	result, err := h.orch.Stop(ctx)
	require.NoError(t, err)

	assert.False(t, result.VideoEnabled)
	assert.Nil(t, result.SleepPositions)
}

func TestWearableEnabledButNotConnectedIsSkipped(t *testing.T) {
	settings := models.DefaultSettings()
	settings.WearableEnabled = true

	h := newHarness(t, settings)

	require.NoError(t, h.orch.Start(context.Background()))

	assert.Zero(t, h.wearable.asked.Load())
	assert.False(t, h.orch.Session().Active.Has(models.Wearable))
}

func TestAllModalities(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, allEnabled())

	require.NoError(t, h.orch.Start(ctx))

	s := h.orch.Session()
	assert.True(t, s.Active.Equal(models.NewModalitySet(
		models.Audio,
		models.Video,
		models.Wearable,
	)))
	assert.Len(t, s.Handles, 3)

	h.clock.Advance(time.Minute)
	h.waitElapsed(t, 60)

	result, err := h.orch.Stop(ctx)
	require.NoError(t, err)

	assert.True(t, result.VideoEnabled)
	require.NotNil(t, result.SleepPositions)

	p := result.SleepPositions
	assert.Equal(t, 100, p.Back+p.Side+p.Stomach)

	assert.True(t, result.WearableEnabled)
	require.NotNil(t, result.HeartRate)
	assert.Equal(t, 62, result.HeartRate.Average)

	s = h.orch.Session()
	assert.Len(t, s.Artifacts, 3)
}

func TestOptionalStopFailureDropsModality(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, allEnabled())
	h.video.stopErr = errors.New("camera disconnected")

	require.NoError(t, h.orch.Start(ctx))

	result, err := h.orch.Stop(ctx)
	require.NoError(t, err)

	assert.False(t, result.VideoEnabled)
	assert.True(t, result.WearableEnabled)
	assert.False(t, h.orch.Session().Active.Has(models.Video))

	_, _, _, failures := h.sink.snapshot()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrCaptureStop)
}

func TestAudioStopFailureStillAnalyzes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, models.DefaultSettings())
	h.audio.stopErr = errors.New("file system full")

	require.NoError(t, h.orch.Start(ctx))

	result, err := h.orch.Stop(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotContains(t, h.orch.Session().Artifacts, models.Audio)
}

func TestAnalysisFailureReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	gw := analysis.GatewayFunc(func(context.Context, analysis.Request) (*models.AnalysisResult, error) {
		return nil, analysis.ErrAnalysisFailed.Wrap(errors.New("model crashed"))
	})

	h := newHarness(t, models.DefaultSettings(), withGateway(gw))

	require.NoError(t, h.orch.Start(ctx))

	result, err := h.orch.Stop(ctx)
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrAnalysis)
	assert.ErrorIs(t, err, analysis.ErrAnalysisFailed)

	s := h.orch.Session()
	assert.Equal(t, Idle, s.State)
	assert.Nil(t, s.Result)
	assert.Nil(t, s.Artifacts)

	entries, err := h.orch.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, h.orch.Start(ctx), "a failed analysis must not block the next session")
}

func TestInconsistentResultIsRejected(t *testing.T) {
	ctx := context.Background()
	gw := analysis.GatewayFunc(func(context.Context, analysis.Request) (*models.AnalysisResult, error) {
		positions := models.NormalizePositions(1, 1, 1)

		r := &models.AnalysisResult{
			DurationHours:  1,
			VideoEnabled:   true,
			SleepPositions: &positions,
		}
		r.SetApnea(3)

		return r, nil
	})

	h := newHarness(t, models.DefaultSettings(), withGateway(gw))

	require.NoError(t, h.orch.Start(ctx))

	_, err := h.orch.Stop(ctx)
	assert.ErrorIs(t, err, ErrAnalysis)
	assert.ErrorIs(t, err, errModalityMismatch)
}

func TestPersistenceFailureKeepsResult(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, models.DefaultSettings(), withKV(brokenKV{store.NewMemory()}))

	require.NoError(t, h.orch.Start(ctx))

	result, err := h.orch.Stop(ctx)
	require.ErrorIs(t, err, ErrPersistence)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.ID)

	s := h.orch.Session()
	assert.Equal(t, ResultAvailable, s.State)
	assert.Equal(t, result.ID, s.Result.ID)
}

func TestProgressIsMonotonic(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})

	gw := analysis.GatewayFunc(func(ctx context.Context, req analysis.Request) (*models.AnalysisResult, error) {
		close(entered)
		<-release
		return analysis.NewGenerator(1).Analyze(ctx, req)
	})

	h := newHarness(t, models.DefaultSettings(), withGateway(gw))

	require.NoError(t, h.orch.Start(ctx))

	done := make(chan error, 1)

	go func() {
		_, err := h.orch.Stop(ctx)
		done <- err
	}()

	<-entered

	assert.Equal(t, Analyzing, h.orch.Session().State)

	for range 15 {
		h.clock.Advance(100 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return h.orch.Session().Progress == 100
	}, time.Second, time.Millisecond)

	close(release)
	require.NoError(t, <-done)

	_, _, progress, _ := h.sink.snapshot()
	require.NotEmpty(t, progress)

	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i], progress[i-1])
	}

	assert.Equal(t, 100, progress[len(progress)-1])
}

func TestResetOnlyFromResult(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, models.DefaultSettings())

	assert.ErrorIs(t, h.orch.Reset(), ErrNoResult)

	require.NoError(t, h.orch.Start(ctx))
	assert.ErrorIs(t, h.orch.Reset(), ErrNoResult)

	_, err := h.orch.Stop(ctx)
	require.NoError(t, err)

	require.NoError(t, h.orch.Reset())

	s := h.orch.Session()
	assert.Equal(t, Idle, s.State)
	assert.Nil(t, s.Result)

	entries, err := h.orch.History(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "reset must not touch history")
}

func TestSettingsSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, models.DefaultSettings())

	require.NoError(t, h.orch.Start(ctx))

	h.settings.set(allEnabled())

	result, err := h.orch.Stop(ctx)
	require.NoError(t, err)

	assert.False(t, result.VideoEnabled)
	assert.False(t, result.WearableEnabled)
	assert.Zero(t, h.video.asked.Load())
	assert.False(t, h.orch.Session().Enabled.Has(models.Video))
}

func TestDisablingModalitiesMidRecordingKeepsThem(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, allEnabled())

	require.NoError(t, h.orch.Start(ctx))

	h.settings.set(models.DefaultSettings())

	h.clock.Advance(2 * time.Second)
	h.waitElapsed(t, 2)

	s := h.orch.Session()
	assert.True(t, s.Enabled.Has(models.Video))
	assert.True(t, s.Enabled.Has(models.Wearable))

	result, err := h.orch.Stop(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), h.video.stopped.Load())
	assert.Equal(t, int32(1), h.wearable.stopped.Load())
	assert.True(t, result.VideoEnabled)
	assert.True(t, result.WearableEnabled)
}

func TestElapsedCountsSecondsWithFastTicks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, models.DefaultSettings())

	orch, err := New(
		[]capture.Adapter{h.audio},
		h.settings,
		h.history,
		analysis.NewGenerator(3),
		WithClock(h.clock),
		WithSink(h.sink),
		WithConfig(Config{TickInterval: 250 * time.Millisecond}),
	)
	require.NoError(t, err)

	require.NoError(t, orch.Start(ctx))

	for range 10 {
		h.clock.Advance(250 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return orch.Session().ElapsedSeconds == 2
	}, time.Second, time.Millisecond)

	_, elapsed, _, _ := h.sink.snapshot()
	assert.Equal(t, []int{1, 2}, elapsed)

	_, err = orch.Stop(ctx)
	require.NoError(t, err)
}

func TestSessionSnapshotIsIsolated(t *testing.T) {
	h := newHarness(t, models.DefaultSettings())

	require.NoError(t, h.orch.Start(context.Background()))

	s := h.orch.Session()
	s.Active.Add(models.Video)
	delete(s.Handles, models.Audio)

	fresh := h.orch.Session()
	assert.False(t, fresh.Active.Has(models.Video))
	assert.Contains(t, fresh.Handles, models.Audio)
}

func TestHistoryViewingIsReadOnly(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, models.DefaultSettings())

	require.NoError(t, h.orch.Start(ctx))

	_, err := h.orch.Stop(ctx)
	require.NoError(t, err)

	states, _, _, _ := h.sink.snapshot()

	_, err = h.orch.History(ctx)
	require.NoError(t, err)

	_, err = h.orch.HistoryEntry(ctx, "missing")
	assert.Error(t, err)

	after, _, _, _ := h.sink.snapshot()
	assert.Equal(t, states, after)
	assert.Equal(t, ResultAvailable, h.orch.Session().State)
}
