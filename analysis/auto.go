package analysis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/somnia-sleep/somnia/internal/models"
)

// Auto prefers the remote service and falls back to the local generator only
// when the service cannot be reached. Status errors and malformed replies are
// still failures.
type Auto struct {
	remote Gateway
	local  Gateway
	log    *slog.Logger
}

func NewAuto(remote, local Gateway, log *slog.Logger) *Auto {
	if log == nil {
		log = slog.Default()
	}

	return &Auto{
		remote: remote,
		local:  local,
		log:    log,
	}
}

func (a *Auto) Analyze(
	ctx context.Context,
	req Request,
) (*models.AnalysisResult, error) {
	r, err := a.remote.Analyze(ctx, req)
	if err == nil {
		return r, nil
	}

	if !errors.Is(err, ErrUnreachable) || ctx.Err() != nil {
		return nil, err
	}

	a.log.WarnContext(ctx, "inference service unreachable, analyzing locally",
		slog.Any("error", err),
	)

	return a.local.Analyze(ctx, req)
}
