// Package session drives one sleep session through recording, analysis and
// result review
package session

import (
	"maps"
	"time"

	"github.com/somnia-sleep/somnia/capture"
	"github.com/somnia-sleep/somnia/internal/models"
)

// State is the lifecycle phase of the session.
type State int

const (
	Idle State = iota
	Recording
	Analyzing
	ResultAvailable
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Analyzing:
		return "analyzing"
	case ResultAvailable:
		return "result available"
	default:
		return "unknown"
	}
}

// Session is the transient state of the current recording. Enabled is the
// settings snapshot taken at start. Active holds the modalities that were
// actually engaged and, after stopping, those that stopped cleanly.
type Session struct {
	StartedAt      time.Time
	Enabled        models.ModalitySet
	Active         models.ModalitySet
	Handles        map[models.Modality]*capture.Handle
	Artifacts      map[models.Modality]*capture.Artifact
	Result         *models.AnalysisResult
	State          State
	ElapsedSeconds int
	Progress       int
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	c := s

	if s.Enabled != nil {
		c.Enabled = s.Enabled.Clone()
	}

	if s.Active != nil {
		c.Active = s.Active.Clone()
	}

	if s.Handles != nil {
		c.Handles = make(map[models.Modality]*capture.Handle, len(s.Handles))

		for m, h := range s.Handles {
			if h == nil {
				continue
			}

			v := *h
			c.Handles[m] = &v
		}
	}

	if s.Artifacts != nil {
		c.Artifacts = make(map[models.Modality]*capture.Artifact, len(s.Artifacts))

		for m, a := range s.Artifacts {
			c.Artifacts[m] = a.Clone()
		}
	}

	c.Result = s.Result.Clone()

	return c
}

func copyHandles(
	h map[models.Modality]*capture.Handle,
) map[models.Modality]*capture.Handle {
	if h == nil {
		return nil
	}

	return maps.Clone(h)
}
