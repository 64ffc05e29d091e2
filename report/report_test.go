package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somnia-sleep/somnia/internal/models"
)

func sampleResult() models.AnalysisResult {
	r := models.AnalysisResult{
		ID:                  "0192a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b",
		Timestamp:           time.Date(2026, 10, 18, 6, 30, 0, 0, time.UTC),
		Source:              models.SourceLocal,
		DurationHours:       2,
		SnoringEvents:       24,
		SnoringMinutes:      12,
		SnoringPercentage:   10,
		LongestPauseSeconds: 18,
		RiskLevel:           "moderate",
		Recommendations:     []string{"Try sleeping on your side"},
	}
	r.SetApnea(10)

	return r
}

func TestResultAudioOnly(t *testing.T) {
	pterm.DisableColor()
	t.Cleanup(pterm.EnableColor)

	var buf bytes.Buffer

	require.NoError(t, Result(&buf, sampleResult()))

	out := buf.String()

	assert.Contains(t, out, "Mild Sleep Apnea")
	assert.Contains(t, out, "5.0 events/h")
	assert.Contains(t, out, "2h 0m")
	assert.Contains(t, out, "Try sleeping on your side")
	assert.NotContains(t, out, "VIDEO")
	assert.NotContains(t, out, "WEARABLE")
}

func TestResultAllModalities(t *testing.T) {
	pterm.DisableColor()
	t.Cleanup(pterm.EnableColor)

	r := sampleResult()
	r.VideoEnabled = true
	r.SleepPositions = &models.SleepPositions{Back: 50, Side: 40, Stomach: 10}
	r.MovementCount = 31
	r.RestlessnessScore = 45
	r.WearableEnabled = true
	r.HeartRate = &models.HeartRate{Average: 64, Min: 58, Max: 79, Variability: 52}
	r.BloodOxygen = &models.BloodOxygen{Average: 96, Min: 91}

	var buf bytes.Buffer

	require.NoError(t, Result(&buf, r))

	out := buf.String()

	assert.Contains(t, out, "back 50% · side 40% · stomach 10%")
	assert.Contains(t, out, "avg 64 · min 58 · max 79")
	assert.Contains(t, out, "avg 96% · min 91%")
	assert.NotContains(t, out, "Skin temperature")
}

func TestLabels(t *testing.T) {
	pterm.DisableColor()
	t.Cleanup(pterm.EnableColor)

	assert.Equal(t, "Severe Sleep Apnea", Severity(models.SeveritySevere))
	assert.Equal(t, "High", Risk("High"))
}
