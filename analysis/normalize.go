package analysis

import (
	"math"

	"github.com/somnia-sleep/somnia/internal/models"
)

const (
	maxPlausibleHours = 24.0
	defaultEfficiency = 0.85
	defaultRiskLevel  = "low"
)

// Normalize maps the service schema onto an AnalysisResult in canonical
// units. A total sleep time above 24 is read as minutes, an efficiency of at
// most 1 is read as a fraction, and AHI and severity are always recomputed.
// The service reports no video metrics, so the video flag stays off. The
// wearable section comes from the captured telemetry.
func Normalize(resp Response, req Request) (*models.AnalysisResult, error) {
	hours := resp.TotalSleepTime
	if hours < 0 || math.IsNaN(hours) {
		return nil, errMalformedResponse.Wrap(
			errNegative.Fmt("total_sleep_time"),
		)
	}

	if hours > maxPlausibleHours {
		hours /= 60
	}

	if hours == 0 {
		hours = req.Hours()
	}

	if resp.ApneaEvents < 0 {
		return nil, errMalformedResponse.Wrap(errNegative.Fmt("apnea_events"))
	}

	efficiency := defaultEfficiency
	if resp.SleepEfficiency != nil && *resp.SleepEfficiency > 0 {
		efficiency = *resp.SleepEfficiency
	}

	if efficiency <= 1 {
		efficiency *= 100
	}

	efficiency = math.Round(efficiency)

	risk := resp.RiskAssessment
	if risk == "" {
		risk = defaultRiskLevel
	}

	r := &models.AnalysisResult{
		Source:          models.SourceRemote,
		DurationHours:   round(hours, 4),
		SleepEfficiency: &efficiency,
		RiskLevel:       risk,
		Disorders:       resp.Disorders,
		Recommendations: resp.Recommendations,
	}

	if s := resp.SleepStages; s != nil {
		r.SleepStages = &models.SleepStages{
			WakeMinutes:  int(math.Round(s.Wake)),
			LightMinutes: int(math.Round(s.Light)),
			DeepMinutes:  int(math.Round(s.Deep)),
			REMMinutes:   int(math.Round(s.REM)),
		}
	}

	r.SetApnea(resp.ApneaEvents)

	if req.Modalities.Has(models.Wearable) {
		if sum := SummarizeTelemetry(req.Telemetry()); sum.Complete() {
			r.WearableEnabled = true
			sum.Apply(r)
		}
	}

	if err := r.Validate(); err != nil {
		return nil, errMalformedResponse.Wrap(err)
	}

	return r, nil
}
