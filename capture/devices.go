package capture

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Device is a wearable that can be paired with the app.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Catalogue is the set of simulated devices a scan discovers.
var Catalogue = []Device{
	{ID: "1", Name: "Apple Watch Series 8", Kind: "apple_watch"},
	{ID: "2", Name: "Mi Band 7", Kind: "mi_band"},
	{ID: "3", Name: "Samsung Galaxy Watch 5", Kind: "samsung_watch"},
}

// Devices tracks the paired wearable. At most one device is connected.
type Devices struct {
	connected *Device
	catalogue []Device
	mu        sync.RWMutex
}

// NewDevices returns a manager that discovers the given devices. With no
// arguments the built-in catalogue is used.
func NewDevices(catalogue ...Device) *Devices {
	if len(catalogue) == 0 {
		catalogue = Catalogue
	}

	return &Devices{
		catalogue: slices.Clone(catalogue),
	}
}

// Scan lists the devices in range.
func (d *Devices) Scan(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return slices.Clone(d.catalogue), nil
}

// Connect pairs the device whose ID or name matches ref, replacing any
// previous connection.
func (d *Devices) Connect(ctx context.Context, ref string) (Device, error) {
	if err := ctx.Err(); err != nil {
		return Device{}, err
	}

	i := slices.IndexFunc(d.catalogue, func(dev Device) bool {
		return dev.ID == ref || strings.EqualFold(dev.Name, ref)
	})
	if i < 0 {
		return Device{}, errDeviceNotFound.Fmt(ref)
	}

	dev := d.catalogue[i]

	d.mu.Lock()
	d.connected = &dev
	d.mu.Unlock()

	return dev, nil
}

func (d *Devices) Disconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	d.connected = nil
	d.mu.Unlock()

	return nil
}

// Connected returns the paired device, if any.
func (d *Devices) Connected() (Device, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.connected == nil {
		return Device{}, false
	}

	return *d.connected, true
}
