package analysis

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/internal/models"
)

const (
	analyzePath = "/api/v1/analyze"
	demoPath    = "/api/v1/demo-analysis"
	healthPath  = "/api/v1/health"

	minRequestHours = 0.1
)

// Client calls the remote inference service.
type Client struct {
	http   *resty.Client
	log    *slog.Logger
	userID string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithUserID sets the user the analysis is filed under.
func WithUserID(id string) ClientOption {
	return func(c *Client) {
		c.userID = id
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithRetries sets how many times a request is retried after a transport
// failure.
func WithRetries(n int) ClientOption {
	return func(c *Client) {
		c.http.SetRetryCount(n)
	}
}

// WithClientLogger sets the request logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient returns a client for the service at baseURL that authenticates
// with token.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	hc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	if token != "" {
		hc.SetAuthToken(token)
	}

	c := &Client{
		http:   hc,
		log:    slog.Default(),
		userID: "demo_user",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type wearableData struct {
	Device      string `json:"device"`
	SampleCount int    `json:"sample_count"`
}

type analyzeRequest struct {
	AudioFileID       *string        `json:"audio_file_id"`
	VideoFileID       *string        `json:"video_file_id"`
	WearableData      *wearableData  `json:"wearable_data"`
	EnvironmentalData map[string]any `json:"environmental_data"`
	UserID            string         `json:"user_id"`
	RecordingDate     string         `json:"recording_date"`
	SpO2Data          []int          `json:"spo2_data"`
	HeartRateData     []int          `json:"heart_rate_data"`
	DurationHours     float64        `json:"duration_hours"`
}

// Response is the inference service's analysis schema.
type Response struct {
	SleepEfficiency *float64      `json:"sleep_efficiency"`
	SleepStages     *stageMinutes `json:"sleep_stages"`
	RiskAssessment  string        `json:"risk_assessment"`
	Disorders       []string      `json:"disorders_detected"`
	Recommendations []string      `json:"recommendations"`
	TotalSleepTime  float64       `json:"total_sleep_time"`
	ApneaEvents     int           `json:"apnea_events"`
}

type stageMinutes struct {
	Wake  float64 `json:"wake"`
	Light float64 `json:"light"`
	Deep  float64 `json:"deep"`
	REM   float64 `json:"rem"`
}

// Analyze uploads the session summary and normalizes the reply.
func (c *Client) Analyze(
	ctx context.Context,
	req Request,
) (*models.AnalysisResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(c.buildRequest(req)).
		Post(analyzePath)

	body, err := c.check(ctx, resp, err)
	if err != nil {
		return nil, failed(err)
	}

	r, err := decodeAndNormalize(body, req)
	if err != nil {
		return nil, failed(err)
	}

	return r, nil
}

// Demo fetches the service's canned analysis.
func (c *Client) Demo(ctx context.Context) (*models.AnalysisResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(demoPath)

	body, err := c.check(ctx, resp, err)
	if err != nil {
		return nil, failed(err)
	}

	r, err := decodeAndNormalize(body, Request{
		Modalities: models.NewModalitySet(models.Audio),
	})
	if err != nil {
		return nil, failed(err)
	}

	return r, nil
}

// Health reports whether the service is up.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(healthPath)

	_, err = c.check(ctx, resp, err)

	return err
}

func (c *Client) check(
	ctx context.Context,
	resp *resty.Response,
	err error,
) ([]byte, error) {
	if err != nil {
		c.log.WarnContext(ctx, "inference request failed", slog.Any("error", err))

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, ErrUnreachable.Wrap(err)
	}

	if !resp.IsSuccess() {
		c.log.WarnContext(ctx, "inference service returned an error",
			slog.Int("status_code", resp.StatusCode()),
			slog.String("path", resp.Request.URL),
		)

		return nil, &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}

	return resp.Body(), nil
}

func (c *Client) buildRequest(req Request) analyzeRequest {
	body := analyzeRequest{
		DurationHours: math.Max(minRequestHours, round(req.Hours(), 2)),
		UserID:        c.userID,
		RecordingDate: req.RecordedAt.UTC().Format(time.RFC3339),
	}

	if a := req.Artifacts[models.Audio]; a != nil && a.Ref != "" {
		id := filepath.Base(a.Ref)
		body.AudioFileID = &id
	}

	if a := req.Artifacts[models.Video]; a != nil && a.Ref != "" {
		id := filepath.Base(a.Ref)
		body.VideoFileID = &id
	}

	samples := req.Telemetry()
	if len(samples) > 0 {
		body.SpO2Data, body.HeartRateData = splitTelemetry(samples)
		body.WearableData = &wearableData{
			Device:      req.Artifacts[models.Wearable].Ref,
			SampleCount: len(samples),
		}
	}

	return body
}

func splitTelemetry(samples []capture.Sample) (spo2, hr []int) {
	for _, s := range samples {
		if s.SpO2 > 0 {
			spo2 = append(spo2, s.SpO2)
		}

		if s.HeartRate > 0 {
			hr = append(hr, s.HeartRate)
		}
	}

	return spo2, hr
}

func decodeAndNormalize(body []byte, req Request) (*models.AnalysisResult, error) {
	var resp Response

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errMalformedResponse.Wrap(err)
	}

	return Normalize(resp, req)
}

// IsStatus reports whether err carries an HTTP status from the service and
// returns it.
func IsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	ok := errors.As(err, &se)

	return se, ok
}
