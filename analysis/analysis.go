// Package analysis turns the artifacts of a finished session into an
// AnalysisResult, either locally or through the remote inference service
package analysis

import (
	"context"
	"time"

	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/internal/models"
)

// Gateway produces a complete result or an error, never a partial result.
// Every error matches ErrAnalysisFailed.
type Gateway interface {
	Analyze(ctx context.Context, req Request) (*models.AnalysisResult, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, req Request) (*models.AnalysisResult, error)

func (f GatewayFunc) Analyze(
	ctx context.Context,
	req Request,
) (*models.AnalysisResult, error) {
	return f(ctx, req)
}

// Request describes the session being analyzed. Modalities holds the
// modalities that were engaged and stopped cleanly.
type Request struct {
	RecordedAt time.Time
	Modalities models.ModalitySet
	Artifacts  map[models.Modality]*capture.Artifact
	Duration   time.Duration
}

// Hours returns the recording length in hours.
func (r Request) Hours() float64 {
	return r.Duration.Hours()
}

// Telemetry returns the wearable samples captured during the session.
func (r Request) Telemetry() []capture.Sample {
	if !r.Modalities.Has(models.Wearable) {
		return nil
	}

	if a := r.Artifacts[models.Wearable]; a != nil {
		return a.Telemetry
	}

	return nil
}

// Modes accepted by ForMode.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
	ModeAuto   = "auto"
)

// ForMode picks the gateway strategy named by mode.
func ForMode(mode string, remote *Client, local *Generator) (Gateway, error) {
	switch mode {
	case ModeLocal, "":
		return local, nil
	case ModeRemote:
		return remote, nil
	case ModeAuto:
		return NewAuto(remote, local, nil), nil
	default:
		return nil, errUnknownMode.Fmt(mode)
	}
}

func failed(err error) error {
	return ErrAnalysisFailed.Wrap(err)
}
