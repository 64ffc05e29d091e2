package analysis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/internal/testutil"
)

var recordedAt = time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)

type bodySnapshot struct {
	golden string
	body   []byte
}

func (b bodySnapshot) Output() ([]byte, string) {
	return b.body, b.golden
}

func telemetry(hr ...int) []capture.Sample {
	samples := make([]capture.Sample, 0, len(hr))

	for i, v := range hr {
		samples = append(samples, capture.Sample{
			At:        recordedAt.Add(time.Duration(i) * 30 * time.Second),
			HeartRate: v,
			SpO2:      96 - i%3,
			HRV:       50,
			SkinTemp:  36.4,
		})
	}

	return samples
}

func request(d time.Duration, samples []capture.Sample, ms ...models.Modality) Request {
	req := Request{
		RecordedAt: recordedAt,
		Duration:   d,
		Modalities: models.NewModalitySet(append([]models.Modality{models.Audio}, ms...)...),
		Artifacts: map[models.Modality]*capture.Artifact{
			models.Audio: {Modality: models.Audio, Ref: "/tmp/rec/somnia-night.wav"},
		},
	}

	if samples != nil {
		req.Artifacts[models.Wearable] = &capture.Artifact{
			Modality:  models.Wearable,
			Ref:       "Mi Band 7",
			Telemetry: samples,
		}
	}

	return req
}

func TestGeneratorAudioOnly(t *testing.T) {
	for seed := range uint64(50) {
		r, err := NewGenerator(seed).Analyze(
			context.Background(),
			request(2*time.Hour, nil),
		)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, r.SnoringEvents, 20)
		assert.LessOrEqual(t, r.SnoringEvents, 49)
		assert.GreaterOrEqual(t, r.ApneaEvents, 5)
		assert.LessOrEqual(t, r.ApneaEvents, 14)
		assert.InDelta(t, float64(r.SnoringEvents)*0.5, r.SnoringMinutes, 1e-9)
		assert.GreaterOrEqual(t, r.LongestPauseSeconds, 10.0)
		assert.LessOrEqual(t, r.LongestPauseSeconds, 30.0)
		assert.Equal(t, models.SourceLocal, r.Source)

		assert.False(t, r.VideoEnabled)
		assert.False(t, r.HasVideoSection())
		assert.False(t, r.WearableEnabled)
		assert.False(t, r.HasWearableSection())
		assert.NoError(t, r.Validate())
	}
}

func TestGeneratorShortSession(t *testing.T) {
	r, err := NewGenerator(1).Analyze(
		context.Background(),
		request(10*time.Second, nil),
	)
	require.NoError(t, err)

	assert.Equal(t, 100.0, r.SnoringPercentage)
	assert.InDelta(t, float64(r.ApneaEvents)/models.AHIEpsilon, r.AHI, 1e-9)
}

func TestGeneratorZeroDuration(t *testing.T) {
	r, err := NewGenerator(1).Analyze(context.Background(), request(0, nil))
	require.NoError(t, err)

	assert.Zero(t, r.SnoringPercentage)
	assert.Zero(t, r.DurationHours)
}

func TestGeneratorSections(t *testing.T) {
	samples := telemetry(62, 64, 90, 66)

	r, err := NewGenerator(3).Analyze(
		context.Background(),
		request(8*time.Hour, samples, models.Video, models.Wearable),
	)
	require.NoError(t, err)

	require.True(t, r.VideoEnabled)
	require.NotNil(t, r.SleepPositions)

	p := r.SleepPositions
	assert.Equal(t, 100, p.Back+p.Side+p.Stomach)

	require.True(t, r.WearableEnabled)

	want := SummarizeTelemetry(samples)
	if diff := cmp.Diff(want.HeartRate, r.HeartRate); diff != "" {
		t.Errorf("heart rate mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneratorWearableWithoutTelemetry(t *testing.T) {
	r, err := NewGenerator(9).Analyze(
		context.Background(),
		request(time.Hour, nil, models.Wearable),
	)
	require.NoError(t, err)

	require.NotNil(t, r.BloodOxygen)
	assert.Equal(t, r.ApneaEvents, r.BloodOxygen.Desaturations)
}

func TestGeneratorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(1).Analyze(ctx, request(time.Hour, nil))
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestSummarizeTelemetry(t *testing.T) {
	samples := []capture.Sample{
		{HeartRate: 60, SpO2: 97, HRV: 40, SkinTemp: 36.2},
		{HeartRate: 85, SpO2: 88, HRV: 60, SkinTemp: 36.8},
		{HeartRate: 70, SpO2: 84, SkinTemp: 36.5},
		{SpO2: 95},
	}

	got := SummarizeTelemetry(samples)

	want := TelemetrySummary{
		Samples:   4,
		RiskLevel: "high",
		HeartRate: &models.HeartRate{
			Average:        72,
			Min:            60,
			Max:            85,
			Variability:    50,
			IrregularBeats: 1,
		},
		BloodOxygen: &models.BloodOxygen{
			Average:       91,
			Min:           84,
			Desaturations: 2,
		},
		Temperature: &models.Temperature{Average: 36.5, Min: 36.2, Max: 36.8},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeEmptyTelemetry(t *testing.T) {
	got := SummarizeTelemetry(nil)

	assert.False(t, got.Complete())
	assert.Nil(t, got.Temperature)
}

func TestNormalize(t *testing.T) {
	fraction := 0.9
	percent := 78.0

	cases := []struct {
		name      string
		resp      Response
		req       Request
		wantHours float64
		wantEff   float64
		wantSev   models.Severity
		wantRisk  string
	}{
		{
			name:      "hours and fractional efficiency",
			resp:      Response{TotalSleepTime: 2, ApneaEvents: 10, SleepEfficiency: &fraction},
			req:       request(2*time.Hour, nil),
			wantHours: 2,
			wantEff:   90,
			wantSev:   models.SeverityMild,
			wantRisk:  "low",
		},
		{
			name:      "minutes are converted",
			resp:      Response{TotalSleepTime: 60, ApneaEvents: 35, SleepEfficiency: &percent, RiskAssessment: "high"},
			req:       request(time.Hour, nil),
			wantHours: 1,
			wantEff:   78,
			wantSev:   models.SeveritySevere,
			wantRisk:  "high",
		},
		{
			name:      "missing duration uses the recording length",
			resp:      Response{ApneaEvents: 0},
			req:       request(3*time.Hour, nil),
			wantHours: 3,
			wantEff:   85,
			wantSev:   models.SeverityNormal,
			wantRisk:  "low",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Normalize(tc.resp, tc.req)
			require.NoError(t, err)

			assert.InDelta(t, tc.wantHours, r.DurationHours, 1e-9)
			assert.InDelta(t, tc.wantEff, *r.SleepEfficiency, 1e-9)
			assert.Equal(t, tc.wantSev, r.Severity)
			assert.Equal(t, tc.wantRisk, r.RiskLevel)
			assert.Equal(t, models.SourceRemote, r.Source)
		})
	}
}

func TestNormalizeModalityFlags(t *testing.T) {
	samples := telemetry(60, 62, 61)
	req := request(time.Hour, samples, models.Video, models.Wearable)

	r, err := Normalize(Response{TotalSleepTime: 1, ApneaEvents: 4}, req)
	require.NoError(t, err)

	assert.False(t, r.VideoEnabled)
	assert.True(t, r.WearableEnabled)
	assert.Equal(t, 61, r.HeartRate.Average)
}

func TestNormalizeRejectsNegative(t *testing.T) {
	_, err := Normalize(Response{ApneaEvents: -1}, request(time.Hour, nil))
	assert.ErrorIs(t, err, errMalformedResponse)

	_, err = Normalize(Response{TotalSleepTime: -2}, request(time.Hour, nil))
	assert.ErrorIs(t, err, errMalformedResponse)
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return srv
}

func TestClientAnalyze(t *testing.T) {
	var body []byte

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, analyzePath, r.URL.Path)
		assert.Equal(t, "Bearer demo-token", r.Header.Get("Authorization"))

		body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"total_sleep_time": 7.5,
			"apnea_events": 40,
			"sleep_efficiency": 0.88,
			"risk_assessment": "moderate",
			"sleep_stages": {"wake": 30, "light": 220, "deep": 90, "rem": 110},
			"disorders_detected": ["obstructive sleep apnea"],
			"recommendations": ["consult a sleep specialist"]
		}`)
	})

	c := NewClient(srv.URL, "demo-token", WithRetries(0))
	req := request(
		7*time.Hour+30*time.Minute,
		telemetry(60, 64),
		models.Wearable,
	)

	r, err := c.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.InDelta(t, 7.5, r.DurationHours, 1e-9)
	assert.Equal(t, models.SeverityMild, r.Severity)
	assert.Equal(t, &models.SleepStages{
		WakeMinutes:  30,
		LightMinutes: 220,
		DeepMinutes:  90,
		REMMinutes:   110,
	}, r.SleepStages)
	assert.Equal(t, []string{"obstructive sleep apnea"}, r.Disorders)
	assert.True(t, r.WearableEnabled)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(body, &sent))

	pretty, err := json.MarshalIndent(sent, "", "  ")
	require.NoError(t, err)

	testutil.CompareGoldenFile(t, bodySnapshot{golden: "analyze_request", body: pretty})
}

func TestClientStatusError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	})

	_, err := NewClient(srv.URL, "", WithRetries(0)).
		Analyze(context.Background(), request(time.Hour, nil))
	require.ErrorIs(t, err, ErrAnalysisFailed)

	se, ok := IsStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Contains(t, se.Body, "model not loaded")
}

func TestClientMalformedBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	})

	_, err := NewClient(srv.URL, "", WithRetries(0)).
		Analyze(context.Background(), request(time.Hour, nil))

	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.ErrorIs(t, err, errMalformedResponse)
}

func TestClientDemoAndHealth(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case healthPath:
			_, _ = io.WriteString(w, `{"status":"healthy"}`)
		case demoPath:
			_, _ = io.WriteString(w, `{"total_sleep_time": 480, "apnea_events": 16}`)
		default:
			http.NotFound(w, r)
		}
	})

	c := NewClient(srv.URL, "", WithRetries(0))

	require.NoError(t, c.Health(context.Background()))

	r, err := c.Demo(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 8.0, r.DurationHours, 1e-9)
	assert.Equal(t, models.SeverityNormal, r.Severity)
}

func unreachableClient(t *testing.T) *Client {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	return NewClient(url, "", WithRetries(0), WithTimeout(time.Second))
}

func TestAutoFallsBackWhenUnreachable(t *testing.T) {
	a := NewAuto(unreachableClient(t), NewGenerator(5), nil)

	r, err := a.Analyze(context.Background(), request(time.Hour, nil))
	require.NoError(t, err)

	assert.Equal(t, models.SourceLocal, r.Source)
}

func TestAutoKeepsStatusFailures(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	local := GatewayFunc(func(context.Context, Request) (*models.AnalysisResult, error) {
		t.Fatal("local generator must not run")
		return nil, errors.New("unreachable")
	})

	a := NewAuto(NewClient(srv.URL, "", WithRetries(0)), local, nil)

	_, err := a.Analyze(context.Background(), request(time.Hour, nil))
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestForMode(t *testing.T) {
	c := NewClient("http://localhost", "")
	g := NewGenerator(1)

	gw, err := ForMode(ModeRemote, c, g)
	require.NoError(t, err)
	assert.Same(t, c, gw)

	gw, err = ForMode("", c, g)
	require.NoError(t, err)
	assert.Same(t, g, gw)

	_, err = ForMode("cloud", c, g)
	assert.ErrorIs(t, err, errUnknownMode)
}
