package analysis

import (
	"math"

	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/internal/models"
)

const (
	desaturationThreshold = 90
	irregularJumpBPM      = 20
)

// TelemetrySummary condenses raw wearable samples into result sections.
// Sections stay nil when no sample carried the reading.
type TelemetrySummary struct {
	HeartRate   *models.HeartRate
	BloodOxygen *models.BloodOxygen
	Temperature *models.Temperature
	RiskLevel   string
	Samples     int
}

// Complete reports whether the summary can fill a wearable section.
func (s TelemetrySummary) Complete() bool {
	return s.HeartRate != nil && s.BloodOxygen != nil
}

// Apply copies the summary sections into r.
func (s TelemetrySummary) Apply(r *models.AnalysisResult) {
	r.HeartRate = s.HeartRate
	r.BloodOxygen = s.BloodOxygen
	r.Temperature = s.Temperature
}

// SummarizeTelemetry computes heart rate, SpO2 and temperature statistics.
// Zero readings are treated as missing. Irregular beats count successive
// heart-rate jumps above 20 bpm and desaturations count SpO2 readings below
// 90 %.
func SummarizeTelemetry(samples []capture.Sample) TelemetrySummary {
	sum := TelemetrySummary{Samples: len(samples), RiskLevel: "low"}

	var hr, spo2, hrv []int

	var temps []float64

	for _, s := range samples {
		if s.HeartRate > 0 {
			hr = append(hr, s.HeartRate)
		}

		if s.SpO2 > 0 {
			spo2 = append(spo2, s.SpO2)
		}

		if s.HRV > 0 {
			hrv = append(hrv, s.HRV)
		}

		if s.SkinTemp > 0 {
			temps = append(temps, s.SkinTemp)
		}
	}

	if len(hr) > 0 {
		lo, hi, avg := stats(hr)
		irregular := 0

		for i := 1; i < len(hr); i++ {
			if abs(hr[i]-hr[i-1]) > irregularJumpBPM {
				irregular++
			}
		}

		variability := 0
		if len(hrv) > 0 {
			_, _, variability = stats(hrv)
		}

		sum.HeartRate = &models.HeartRate{
			Average:        avg,
			Min:            lo,
			Max:            hi,
			Variability:    variability,
			IrregularBeats: irregular,
		}
	}

	if len(spo2) > 0 {
		lo, _, avg := stats(spo2)
		drops := 0

		for _, v := range spo2 {
			if v < desaturationThreshold {
				drops++
			}
		}

		sum.BloodOxygen = &models.BloodOxygen{
			Average:       avg,
			Min:           lo,
			Desaturations: drops,
		}
	}

	if len(temps) > 0 {
		t := &models.Temperature{Min: temps[0], Max: temps[0]}
		total := 0.0

		for _, v := range temps {
			t.Min = math.Min(t.Min, v)
			t.Max = math.Max(t.Max, v)
			total += v
		}

		t.Average = round(total/float64(len(temps)), 1)
		sum.Temperature = t
	}

	if sum.BloodOxygen != nil {
		avgHR := 0
		if sum.HeartRate != nil {
			avgHR = sum.HeartRate.Average
		}

		sum.RiskLevel = riskLevel(
			sum.BloodOxygen.Min,
			sum.BloodOxygen.Desaturations,
			avgHR,
		)
	}

	return sum
}

// riskLevel scores the oxygen profile. A minimum below 85 % alone is high
// risk.
func riskLevel(minSpO2, drops, avgHR int) string {
	score := 0.0

	switch {
	case minSpO2 < 85:
		score += 0.6
	case minSpO2 < desaturationThreshold:
		score += 0.3
	}

	if drops > 3 {
		score += 0.3
	}

	if avgHR > 100 {
		score += 0.1
	}

	switch {
	case score >= 0.6:
		return "high"
	case score >= 0.3:
		return "moderate"
	default:
		return "low"
	}
}

func stats(v []int) (lo, hi, avg int) {
	lo, hi = v[0], v[0]
	total := 0

	for _, x := range v {
		lo = min(lo, x)
		hi = max(hi, x)
		total += x
	}

	return lo, hi, int(math.Round(float64(total) / float64(len(v))))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
