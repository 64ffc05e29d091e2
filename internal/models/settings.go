package models

// MonitoringSettings selects the modalities a session engages and records
// the wearable connection state. A single instance is persisted.
type MonitoringSettings struct {
	WearableDeviceName string `json:"wearableDeviceName,omitempty"`
	AudioEnabled       bool   `json:"audioEnabled"`
	VideoEnabled       bool   `json:"videoEnabled"`
	WearableEnabled    bool   `json:"wearableEnabled"`
	WearableConnected  bool   `json:"wearableConnected"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() MonitoringSettings {
	return MonitoringSettings{
		AudioEnabled: true,
	}
}

// NeedsWearableConnection reports the transient state where the wearable is
// enabled but no device is connected yet. Callers should start the connect
// flow; the wearable must not be treated as a data source meanwhile.
func (s MonitoringSettings) NeedsWearableConnection() bool {
	return s.WearableEnabled && !s.WearableConnected
}

// EnabledModalities returns the modalities a new session should try to
// engage. Audio is always included.
func (s MonitoringSettings) EnabledModalities() ModalitySet {
	set := NewModalitySet(Audio)

	if s.VideoEnabled {
		set.Add(Video)
	}

	if s.WearableEnabled {
		set.Add(Wearable)
	}

	return set
}
