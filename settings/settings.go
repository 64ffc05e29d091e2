// Package settings persists the monitoring settings singleton
package settings

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"

	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/store"
)

// DefaultKey is the storage key of the settings blob.
const DefaultKey = "somnia_monitoring_settings"

// Patch holds the fields to change. Nil fields are left untouched. Audio is
// the baseline modality and cannot be switched off.
type Patch struct {
	VideoEnabled       *bool
	WearableEnabled    *bool
	WearableConnected  *bool
	WearableDeviceName *string
}

// Store caches the settings in memory and overwrites the persisted copy on
// every update.
type Store struct {
	kv      store.KV
	log     *slog.Logger
	current *models.MonitoringSettings
	key     string
	mu      sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithLogger sets the logger used for load and save failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

func New(kv store.KV, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		key: DefaultKey,
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the current settings, loading them on first use. Missing or
// unreadable settings fall back to the defaults.
func (s *Store) Get(ctx context.Context) models.MonitoringSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked(ctx)
}

// Update merges p into the current settings and persists the full object.
// On a save failure the merged value stays in effect and the error is
// returned.
func (s *Store) Update(
	ctx context.Context,
	p Patch,
) (models.MonitoringSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.loadLocked(ctx)
	p.apply(&next)

	s.current = &next

	b, err := json.Marshal(next)
	if err != nil {
		return next, ErrSaveSettings.Wrap(err)
	}

	if err := s.kv.Put(ctx, s.key, b); err != nil {
		s.log.ErrorContext(ctx, "saving settings failed", slog.Any("error", err))
		return next, ErrSaveSettings.Wrap(err)
	}

	return next, nil
}

func (s *Store) loadLocked(ctx context.Context) models.MonitoringSettings {
	if s.current != nil {
		return *s.current
	}

	loaded := models.DefaultSettings()

	b, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		s.log.WarnContext(ctx, "loading settings failed, using defaults",
			slog.Any("error", err),
		)
	default:
		if err := json.Unmarshal(b, &loaded); err != nil {
			s.log.WarnContext(ctx, "stored settings are corrupt, using defaults",
				slog.Any("error", err),
			)

			loaded = models.DefaultSettings()
		}
	}

	loaded.AudioEnabled = true
	s.current = &loaded

	return loaded
}

func (p Patch) apply(m *models.MonitoringSettings) {
	if p.VideoEnabled != nil {
		m.VideoEnabled = *p.VideoEnabled
	}

	if p.WearableEnabled != nil {
		m.WearableEnabled = *p.WearableEnabled
	}

	if p.WearableConnected != nil {
		m.WearableConnected = *p.WearableConnected
	}

	if p.WearableDeviceName != nil {
		m.WearableDeviceName = *p.WearableDeviceName
	}
}

// Bool returns a pointer to v for building patches.
func Bool(v bool) *bool {
	return &v
}

// String returns a pointer to v for building patches.
func String(v string) *string {
	return &v
}
