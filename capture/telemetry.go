package capture

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultSampleInterval is the spacing of wearable samples.
const DefaultSampleInterval = 30 * time.Second

// Sample is one wearable reading.
type Sample struct {
	At        time.Time `json:"ts"`
	HeartRate int       `json:"hr"`
	SpO2      int       `json:"spo2"`
	HRV       int       `json:"hrv"`
	SkinTemp  float64   `json:"temp"`
}

// TelemetrySource yields the readings a device took between from and to.
type TelemetrySource interface {
	Samples(
		ctx context.Context,
		dev Device,
		from, to time.Time,
		interval time.Duration,
	) ([]Sample, error)
}

// SimulatedSource produces plausible overnight readings: heart rate 60-80
// bpm, SpO2 94-98 %, HRV 40-70 ms and skin temperature around 36.5 C.
type SimulatedSource struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// NewSimulatedSource returns a source seeded with seed so that runs can be
// reproduced.
func NewSimulatedSource(seed uint64) *SimulatedSource {
	return &SimulatedSource{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *SimulatedSource) Samples(
	ctx context.Context,
	_ Device,
	from, to time.Time,
	interval time.Duration,
) ([]Sample, error) {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	n := int(to.Sub(from) / interval)
	if n <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	samples := make([]Sample, 0, n)

	for i := range n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		temp := 36.2 + s.rng.Float64()*0.8

		samples = append(samples, Sample{
			At:        from.Add(time.Duration(i+1) * interval),
			HeartRate: 60 + s.rng.IntN(21),
			SpO2:      94 + s.rng.IntN(5),
			HRV:       40 + s.rng.IntN(31),
			SkinTemp:  math.Round(temp*10) / 10,
		})
	}

	return samples, nil
}
