// Package capture defines the adapter contract shared by the recording
// modalities and provides the audio, video and wearable adapters
package capture

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/somnia-sleep/somnia/internal/models"
)

// Adapter engages one modality for the length of a session. Failures are
// returned as errors, never panics.
type Adapter interface {
	Modality() models.Modality
	// RequestPermission asks the platform for access. A false return means
	// the modality must not be started.
	RequestPermission(ctx context.Context) bool
	StartCapture(ctx context.Context) (*Handle, error)
	StopCapture(ctx context.Context, h *Handle) (*Artifact, error)
}

// Handle identifies a running capture.
type Handle struct {
	StartedAt time.Time
	ID        string
	Modality  models.Modality
}

// Artifact is what a capture leaves behind once stopped.
type Artifact struct {
	Modality models.Modality
	// Ref points at the stored recording. It is empty for modalities that
	// keep no file.
	Ref       string
	Telemetry []Sample
	Duration  time.Duration
}

// Clone returns a copy that shares nothing with a.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}

	c := *a
	c.Telemetry = append([]Sample(nil), a.Telemetry...)

	return &c
}

// PermissionFunc answers a permission request for a modality.
type PermissionFunc func(ctx context.Context, m models.Modality) bool

// Grant allows every modality.
func Grant(context.Context, models.Modality) bool {
	return true
}

// Deny refuses every modality.
func Deny(context.Context, models.Modality) bool {
	return false
}

// registry tracks the handles an adapter has issued and not yet stopped.
type registry struct {
	now    func() time.Time
	active map[string]*Handle
	mu     sync.Mutex
}

func newRegistry(now func() time.Time) *registry {
	if now == nil {
		now = time.Now
	}

	return &registry{
		now:    now,
		active: make(map[string]*Handle),
	}
}

func (r *registry) open(m models.Modality) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &Handle{
		ID:        uuid.NewString(),
		Modality:  m,
		StartedAt: r.now(),
	}

	r.active[h.ID] = h

	return h
}

// close forgets h and returns how long it ran.
func (r *registry) close(h *Handle) (time.Duration, error) {
	if h == nil {
		return 0, errUnknownHandle.Fmt("<nil>")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[h.ID]; !ok {
		return 0, errUnknownHandle.Fmt(h.ID)
	}

	delete(r.active, h.ID)

	d := r.now().Sub(h.StartedAt)
	if d < 0 {
		d = 0
	}

	return d, nil
}
