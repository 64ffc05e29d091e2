package models

import (
	"math"
	"slices"
	"time"
)

// Severity is the apnea-hypopnea index band of a result.
type Severity string

const (
	SeverityNormal   Severity = "Normal"
	SeverityMild     Severity = "Mild Sleep Apnea"
	SeverityModerate Severity = "Moderate Sleep Apnea"
	SeveritySevere   Severity = "Severe Sleep Apnea"
)

// AHIEpsilon is the smallest duration in hours used as the AHI divisor so
// that very short recordings do not divide by zero.
const AHIEpsilon = 0.1

// Lower bounds (inclusive) of each severity band.
const (
	mildThreshold     = 5.0
	moderateThreshold = 15.0
	severeThreshold   = 30.0
)

// Source records which analysis strategy produced a result.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

type SleepPositions struct {
	Back    int `json:"back"`
	Side    int `json:"side"`
	Stomach int `json:"stomach"`
}

type HeartRate struct {
	Average        int `json:"average"`
	Min            int `json:"min"`
	Max            int `json:"max"`
	Variability    int `json:"variability"` // HRV in ms
	IrregularBeats int `json:"irregularBeats"`
}

type BloodOxygen struct {
	Average       int `json:"average"`
	Min           int `json:"min"`
	Desaturations int `json:"desaturations"` // drops below 90%
}

type Temperature struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// SleepStages holds the minutes spent in each stage.
type SleepStages struct {
	WakeMinutes  int `json:"wakeMinutes"`
	LightMinutes int `json:"lightMinutes"`
	DeepMinutes  int `json:"deepMinutes"`
	REMMinutes   int `json:"remMinutes"`
}

// AnalysisResult is the sleep-health summary of one session. Durations use
// hours, snoring time and sleep stages use minutes, pauses use seconds and
// ratios are percentages in [0, 100].
type AnalysisResult struct {
	Timestamp time.Time `json:"timestamp"`

	SleepPositions  *SleepPositions `json:"sleepPositions,omitempty"`
	HeartRate       *HeartRate      `json:"heartRate,omitempty"`
	BloodOxygen     *BloodOxygen    `json:"bloodOxygen,omitempty"`
	Temperature     *Temperature    `json:"temperature,omitempty"`
	SleepStages     *SleepStages    `json:"sleepStages,omitempty"`
	SleepEfficiency *float64        `json:"sleepEfficiency,omitempty"`

	ID        string   `json:"id"`
	Severity  Severity `json:"severity"`
	Source    Source   `json:"source"`
	RiskLevel string   `json:"riskLevel,omitempty"`

	Disorders       []string `json:"disorders,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`

	DurationHours       float64 `json:"durationHours"`
	SnoringMinutes      float64 `json:"snoringMinutes"`
	SnoringPercentage   float64 `json:"snoringPercentage"`
	AHI                 float64 `json:"ahi"`
	LongestPauseSeconds float64 `json:"longestPauseSeconds"`

	SnoringEvents     int `json:"snoringEvents"`
	ApneaEvents       int `json:"apneaEvents"`
	MovementCount     int `json:"movementCount,omitempty"`
	RestlessnessScore int `json:"restlessnessScore,omitempty"`

	VideoEnabled    bool `json:"videoEnabled"`
	WearableEnabled bool `json:"wearableEnabled"`
}

// ComputeAHI returns apnea events per hour of recording.
func ComputeAHI(apneaEvents int, durationHours float64) float64 {
	return float64(apneaEvents) / math.Max(durationHours, AHIEpsilon)
}

// SeverityFor maps an AHI value to its band. Each band includes its lower
// bound.
func SeverityFor(ahi float64) Severity {
	switch {
	case ahi >= severeThreshold:
		return SeveritySevere
	case ahi >= moderateThreshold:
		return SeverityModerate
	case ahi >= mildThreshold:
		return SeverityMild
	default:
		return SeverityNormal
	}
}

// SetApnea records the apnea count and derives AHI and severity from it.
func (r *AnalysisResult) SetApnea(apneaEvents int) {
	r.ApneaEvents = apneaEvents
	r.AHI = ComputeAHI(apneaEvents, r.DurationHours)
	r.Severity = SeverityFor(r.AHI)
}

// NormalizePositions scales raw position weights to whole percentages that
// sum to exactly 100. Rounding drift is absorbed by the stomach share.
func NormalizePositions(back, side, stomach float64) SleepPositions {
	total := back + side + stomach
	if total <= 0 {
		return SleepPositions{Back: 100}
	}

	b := int(math.Round(back / total * 100))
	s := int(math.Round(side / total * 100))

	if b+s > 100 {
		s = 100 - b
	}

	return SleepPositions{
		Back:    b,
		Side:    s,
		Stomach: 100 - b - s,
	}
}

// Clone returns a deep copy of the result.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}

	c := *r

	if r.SleepPositions != nil {
		v := *r.SleepPositions
		c.SleepPositions = &v
	}

	if r.HeartRate != nil {
		v := *r.HeartRate
		c.HeartRate = &v
	}

	if r.BloodOxygen != nil {
		v := *r.BloodOxygen
		c.BloodOxygen = &v
	}

	if r.Temperature != nil {
		v := *r.Temperature
		c.Temperature = &v
	}

	if r.SleepStages != nil {
		v := *r.SleepStages
		c.SleepStages = &v
	}

	if r.SleepEfficiency != nil {
		v := *r.SleepEfficiency
		c.SleepEfficiency = &v
	}

	c.Disorders = slices.Clone(r.Disorders)
	c.Recommendations = slices.Clone(r.Recommendations)

	return &c
}

// HasVideoSection reports whether any video-derived field is present.
func (r *AnalysisResult) HasVideoSection() bool {
	return r.SleepPositions != nil || r.MovementCount != 0 ||
		r.RestlessnessScore != 0
}

// HasWearableSection reports whether any wearable-derived field is present.
func (r *AnalysisResult) HasWearableSection() bool {
	return r.HeartRate != nil || r.BloodOxygen != nil || r.Temperature != nil
}
