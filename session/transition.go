package session

import (
	"maps"
	"time"

	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/internal/models"
)

// Event is an input to Transition.
type Event interface {
	name() string
}

// StartEvent enters Recording with the engaged captures.
type StartEvent struct {
	At      time.Time
	Enabled models.ModalitySet
	Active  models.ModalitySet
	Handles map[models.Modality]*capture.Handle
}

// TickEvent recomputes the elapsed counter from the tick time. The counter
// never moves backwards.
type TickEvent struct {
	At time.Time
}

// StopEvent enters Analyzing. Active is narrowed to the modalities that
// stopped cleanly.
type StopEvent struct {
	Active    models.ModalitySet
	Artifacts map[models.Modality]*capture.Artifact
}

// ProgressEvent reports analysis progress in percent.
type ProgressEvent struct {
	Percent int
}

// AnalysisSucceededEvent carries the committed result.
type AnalysisSucceededEvent struct {
	Result *models.AnalysisResult
}

// AnalysisFailedEvent discards the session.
type AnalysisFailedEvent struct{}

// ResetEvent leaves the result screen for a new recording.
type ResetEvent struct{}

func (StartEvent) name() string             { return "start" }
func (TickEvent) name() string              { return "tick" }
func (StopEvent) name() string              { return "stop" }
func (ProgressEvent) name() string          { return "progress" }
func (AnalysisSucceededEvent) name() string { return "analysis succeeded" }
func (AnalysisFailedEvent) name() string    { return "analysis failed" }
func (ResetEvent) name() string             { return "reset" }

// Transition returns the session that results from applying e to s. s is not
// modified. An event that is not valid in the current state returns s
// unchanged together with an error.
func Transition(s Session, e Event) (Session, error) {
	switch e := e.(type) {
	case StartEvent:
		if s.State != Idle {
			return s, ErrSessionActive
		}

		return Session{
			State:     Recording,
			StartedAt: e.At,
			Enabled:   e.Enabled.Clone(),
			Active:    e.Active.Clone(),
			Handles:   copyHandles(e.Handles),
		}, nil

	case TickEvent:
		if s.State != Recording {
			return s, ErrNotRecording
		}

		elapsed := int(e.At.Sub(s.StartedAt) / time.Second)
		s.ElapsedSeconds = max(s.ElapsedSeconds, elapsed)

		return s, nil

	case StopEvent:
		if s.State != Recording {
			return s, ErrNotRecording
		}

		s.State = Analyzing
		s.Progress = 0
		s.Handles = nil
		s.Active = e.Active.Clone()
		s.Artifacts = maps.Clone(e.Artifacts)

		return s, nil

	case ProgressEvent:
		if s.State != Analyzing {
			return s, errInvalidTransition.Fmt(e.name(), s.State)
		}

		s.Progress = max(s.Progress, min(e.Percent, 100))

		return s, nil

	case AnalysisSucceededEvent:
		if s.State != Analyzing {
			return s, errInvalidTransition.Fmt(e.name(), s.State)
		}

		if e.Result == nil {
			return s, errMissingResult
		}

		s.State = ResultAvailable
		s.Progress = 100
		s.Result = e.Result

		return s, nil

	case AnalysisFailedEvent:
		if s.State != Analyzing {
			return s, errInvalidTransition.Fmt(e.name(), s.State)
		}

		return Session{}, nil

	case ResetEvent:
		if s.State != ResultAvailable {
			return s, ErrNoResult
		}

		return Session{}, nil
	}

	return s, errInvalidTransition.Fmt("unknown event", s.State)
}
