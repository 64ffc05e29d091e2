package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/store"
)

type failingKV struct {
	*store.Memory
	putErr error
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.putErr != nil {
		return f.putErr
	}

	return f.Memory.Put(ctx, key, value)
}

func result(apnea int) models.AnalysisResult {
	r := models.AnalysisResult{DurationHours: 8, SnoringEvents: apnea * 2}
	r.SetApnea(apnea)

	return r
}

func steppingClock() func() time.Time {
	t := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestAppendNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory(), WithClock(steppingClock()))

	first, err := s.Append(ctx, result(1))
	require.NoError(t, err)

	second, err := s.Append(ctx, result(2))
	require.NoError(t, err)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, all[0].Timestamp.After(all[1].Timestamp))
}

func TestAppendEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory(), WithClock(steppingClock()))

	var ids []string

	for i := 0; i <= MaxEntries; i++ {
		r, err := s.Append(ctx, result(i))
		require.NoError(t, err)

		ids = append(ids, r.ID)

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(all), MaxEntries)
	}

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, MaxEntries)

	// the first inserted entry is gone, the second-oldest is now last
	for _, r := range all {
		assert.NotEqual(t, ids[0], r.ID)
	}

	assert.Equal(t, ids[1], all[MaxEntries-1].ID)
	assert.Equal(t, ids[MaxEntries], all[0].ID)
}

func TestAppendReturnsStampedResultOnSaveFailure(t *testing.T) {
	kv := &failingKV{Memory: store.NewMemory(), putErr: errors.New("disk full")}
	s := New(kv)

	r, err := s.Append(context.Background(), result(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSaveHistory))
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.Timestamp.IsZero())
}

func TestGetAndClear(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory())

	r, err := s.Append(ctx, result(4))
	require.NoError(t, err)

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.ApneaEvents)

	_, err = s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, errResultNotFound))

	require.NoError(t, s.Clear(ctx))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCorruptBlobIsReported(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Put(ctx, DefaultKey, []byte("{not json")))

	_, err := New(kv).All(ctx)
	assert.True(t, errors.Is(err, errCorruptHistory))
}
