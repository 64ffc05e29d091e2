package capture

import (
	"context"
	"time"

	"github.com/somnia-sleep/somnia/internal/models"
)

// Wearable collects telemetry from the connected device.
type Wearable struct {
	devices    *Devices
	source     TelemetrySource
	permission PermissionFunc
	handles    *registry
	interval   time.Duration
}

// WearableOption configures the wearable adapter.
type WearableOption func(*Wearable)

// WithTelemetrySource replaces the simulated readings.
func WithTelemetrySource(src TelemetrySource) WearableOption {
	return func(w *Wearable) {
		w.source = src
	}
}

// WithSampleInterval sets the spacing of collected samples.
func WithSampleInterval(d time.Duration) WearableOption {
	return func(w *Wearable) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWearablePermission sets the health-data permission answer.
func WithWearablePermission(p PermissionFunc) WearableOption {
	return func(w *Wearable) {
		w.permission = p
	}
}

// WithWearableClock overrides the time source.
func WithWearableClock(now func() time.Time) WearableOption {
	return func(w *Wearable) {
		w.handles = newRegistry(now)
	}
}

func NewWearable(devices *Devices, opts ...WearableOption) *Wearable {
	w := &Wearable{
		devices:    devices,
		source:     NewSimulatedSource(uint64(time.Now().UnixNano())),
		permission: Grant,
		handles:    newRegistry(nil),
		interval:   DefaultSampleInterval,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *Wearable) Modality() models.Modality {
	return models.Wearable
}

func (w *Wearable) RequestPermission(ctx context.Context) bool {
	return w.permission(ctx, models.Wearable)
}

// StartCapture fails unless a device is connected.
func (w *Wearable) StartCapture(_ context.Context) (*Handle, error) {
	if _, ok := w.devices.Connected(); !ok {
		return nil, errNoDevice
	}

	return w.handles.open(models.Wearable), nil
}

// StopCapture gathers the samples taken since the capture started.
func (w *Wearable) StopCapture(ctx context.Context, h *Handle) (*Artifact, error) {
	d, err := w.handles.close(h)
	if err != nil {
		return nil, err
	}

	dev, ok := w.devices.Connected()
	if !ok {
		return nil, errNoDevice
	}

	samples, err := w.source.Samples(
		ctx,
		dev,
		h.StartedAt,
		h.StartedAt.Add(d),
		w.interval,
	)
	if err != nil {
		return nil, errTelemetry.Wrap(err)
	}

	return &Artifact{
		Modality:  models.Wearable,
		Ref:       dev.Name,
		Telemetry: samples,
		Duration:  d,
	}, nil
}
