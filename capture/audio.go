package capture

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/internal/osutil"
)

// DefaultSampleRate is the rate used for recordings unless overridden.
const DefaultSampleRate = 8000

// DefaultMaxClip is the longest stretch of audio written to disk for one
// session. The artifact still reports the full session duration.
const DefaultMaxClip = time.Minute

// Audio records the mandatory baseline modality into a mono WAV file.
type Audio struct {
	source     func() beep.Streamer
	permission PermissionFunc
	handles    *registry
	dir        string
	rate       beep.SampleRate
	maxClip    time.Duration
}

// AudioOption configures the audio adapter.
type AudioOption func(*Audio)

// WithSampleRate sets the recording sample rate in Hz.
func WithSampleRate(hz int) AudioOption {
	return func(a *Audio) {
		if hz > 0 {
			a.rate = beep.SampleRate(hz)
		}
	}
}

// WithMaxClip caps the length of the stored clip.
func WithMaxClip(d time.Duration) AudioOption {
	return func(a *Audio) {
		if d > 0 {
			a.maxClip = d
		}
	}
}

// WithSource sets the streamer the recording is read from. The default is
// silence.
func WithSource(src func() beep.Streamer) AudioOption {
	return func(a *Audio) {
		a.source = src
	}
}

// WithAudioPermission sets the microphone permission answer.
func WithAudioPermission(p PermissionFunc) AudioOption {
	return func(a *Audio) {
		a.permission = p
	}
}

// WithAudioClock overrides the time source.
func WithAudioClock(now func() time.Time) AudioOption {
	return func(a *Audio) {
		a.handles = newRegistry(now)
	}
}

// NewAudio returns an adapter that stores recordings in dir.
func NewAudio(dir string, opts ...AudioOption) *Audio {
	a := &Audio{
		dir:        dir,
		rate:       DefaultSampleRate,
		maxClip:    DefaultMaxClip,
		permission: Grant,
		handles:    newRegistry(nil),
		source: func() beep.Streamer {
			return beep.Silence(-1)
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *Audio) Modality() models.Modality {
	return models.Audio
}

func (a *Audio) RequestPermission(ctx context.Context) bool {
	return a.permission(ctx, models.Audio)
}

func (a *Audio) StartCapture(_ context.Context) (*Handle, error) {
	if err := os.MkdirAll(a.dir, osutil.DirPermission); err != nil {
		return nil, errWriteRecording.Wrap(err)
	}

	return a.handles.open(models.Audio), nil
}

// StopCapture writes the captured audio to disk and returns its path. Only
// the first maxClip of the session is stored.
func (a *Audio) StopCapture(_ context.Context, h *Handle) (*Artifact, error) {
	d, err := a.handles.close(h)
	if err != nil {
		return nil, err
	}

	name := "somnia-" + h.StartedAt.Format("20060102T150405") + "-" +
		h.ID[:8] + ".wav"
	path := filepath.Join(a.dir, name)

	if err := a.encode(path, a.rate.N(min(d, a.maxClip))); err != nil {
		return nil, err
	}

	return &Artifact{
		Modality: models.Audio,
		Ref:      path,
		Duration: d,
	}, nil
}

func (a *Audio) encode(path string, samples int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errWriteRecording.Wrap(err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errWriteRecording.Wrap(cerr)
		}
	}()

	format := beep.Format{
		SampleRate:  a.rate,
		NumChannels: 1,
		Precision:   2,
	}

	if err := wav.Encode(f, beep.Take(samples, a.source()), format); err != nil {
		return errWriteRecording.Wrap(err)
	}

	return nil
}
