// Package history keeps the bounded, newest-first log of analysis results
package history

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/store"
)

// MaxEntries is the number of results kept. Appending beyond it evicts the
// oldest entry.
const MaxEntries = 30

// DefaultKey is the storage key of the history blob.
const DefaultKey = "somnia_sleep_history"

// Store enforces ordering and the size cap over an opaque KV blob.
type Store struct {
	kv  store.KV
	now func() time.Time
	log *slog.Logger
	key string
	mu  sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithClock overrides the commit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

func New(kv store.KV, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		key: DefaultKey,
		now: time.Now,
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Append stamps the result with a new ID and the commit time, inserts it at
// the front and trims the history to MaxEntries. The stamped result is
// returned even when saving fails so the caller can still present it.
func (s *Store) Append(
	ctx context.Context,
	result models.AnalysisResult,
) (models.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamped := *result.Clone()
	stamped.ID = newID()
	stamped.Timestamp = s.now()

	entries, err := s.load(ctx)
	if err != nil {
		return stamped, err
	}

	entries = append([]models.AnalysisResult{stamped}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	if err := s.save(ctx, entries); err != nil {
		s.log.ErrorContext(ctx, "saving history failed",
			slog.String("result_id", stamped.ID),
			slog.Any("error", err),
		)

		return stamped, err
	}

	return stamped, nil
}

// All returns every stored result, newest first.
func (s *Store) All(ctx context.Context) ([]models.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Get returns the stored result with the given ID.
func (s *Store) Get(ctx context.Context, id string) (models.AnalysisResult, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	for i := range entries {
		if entries[i].ID == id {
			return entries[i], nil
		}
	}

	return models.AnalysisResult{}, errResultNotFound.Fmt(id)
}

// Clear removes the whole history.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.key); err != nil {
		return ErrSaveHistory.Wrap(err)
	}

	return nil
}

func (s *Store) load(ctx context.Context) ([]models.AnalysisResult, error) {
	b, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, errLoadHistory.Wrap(err)
	}

	var entries []models.AnalysisResult

	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, errCorruptHistory.Wrap(err)
	}

	return entries, nil
}

func (s *Store) save(ctx context.Context, entries []models.AnalysisResult) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return ErrSaveHistory.Wrap(err)
	}

	if err := s.kv.Put(ctx, s.key, b); err != nil {
		return ErrSaveHistory.Wrap(err)
	}

	return nil
}

// newID returns a time-ordered identifier, falling back to a random one if
// the clock sequence cannot be read.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
