package analysis

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/somnia-sleep/somnia/internal/models"
)

const (
	snoringMinutesPerEvent = 0.5
	snoringSecondsPerEvent = 30.0
)

// Generator is the local stand-in for the inference service. It draws
// plausible metrics from a seeded random source and summarizes any captured
// wearable telemetry.
type Generator struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

func (g *Generator) Analyze(
	ctx context.Context,
	req Request,
) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, failed(err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	seconds := req.Duration.Seconds()
	snoring := 20 + g.rng.IntN(30)

	r := &models.AnalysisResult{
		Source:              models.SourceLocal,
		DurationHours:       round(req.Hours(), 4),
		SnoringEvents:       snoring,
		SnoringMinutes:      float64(snoring) * snoringMinutesPerEvent,
		LongestPauseSeconds: round(10+g.rng.Float64()*20, 1),
	}

	if seconds > 0 {
		pct := float64(snoring) * snoringSecondsPerEvent / seconds * 100
		r.SnoringPercentage = round(min(pct, 100), 1)
	}

	r.SetApnea(5 + g.rng.IntN(10))

	if req.Modalities.Has(models.Video) {
		g.videoSection(r)
	}

	if req.Modalities.Has(models.Wearable) {
		g.wearableSection(r, req)
	}

	if err := r.Validate(); err != nil {
		return nil, failed(err)
	}

	return r, nil
}

func (g *Generator) videoSection(r *models.AnalysisResult) {
	positions := models.NormalizePositions(
		float64(30+g.rng.IntN(30)),
		float64(30+g.rng.IntN(40)),
		float64(5+g.rng.IntN(20)),
	)

	r.VideoEnabled = true
	r.SleepPositions = &positions
	r.MovementCount = 20 + g.rng.IntN(50)
	r.RestlessnessScore = 30 + g.rng.IntN(40)
}

func (g *Generator) wearableSection(r *models.AnalysisResult, req Request) {
	r.WearableEnabled = true

	if sum := SummarizeTelemetry(req.Telemetry()); sum.Complete() {
		sum.Apply(r)
		return
	}

	r.HeartRate = &models.HeartRate{
		Average:        60 + g.rng.IntN(15),
		Min:            50 + g.rng.IntN(10),
		Max:            75 + g.rng.IntN(20),
		Variability:    40 + g.rng.IntN(30),
		IrregularBeats: g.rng.IntN(5),
	}

	r.BloodOxygen = &models.BloodOxygen{
		Average:       95 + g.rng.IntN(3),
		Min:           88 + g.rng.IntN(5),
		Desaturations: r.ApneaEvents,
	}

	r.Temperature = &models.Temperature{
		Average: round(36.5+g.rng.Float64()*0.5, 1),
		Min:     round(36.2+g.rng.Float64()*0.3, 1),
		Max:     round(36.8+g.rng.Float64()*0.5, 1),
	}
}
