package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()

	b, err := NewBolt(filepath.Join(t.TempDir(), "somnia.db"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	r := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	kvs := map[string]KV{
		DriverBolt:   b,
		DriverRedis:  r,
		DriverMemory: NewMemory(),
	}

	t.Cleanup(func() {
		for _, kv := range kvs {
			_ = kv.Close()
		}
	})

	return kvs
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "somnia_history")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, kv.Put(ctx, "somnia_history", []byte(`[1]`)))
			require.NoError(t, kv.Put(ctx, "somnia_history", []byte(`[2,1]`)))

			v, err := kv.Get(ctx, "somnia_history")
			require.NoError(t, err)
			assert.Equal(t, `[2,1]`, string(v))

			require.NoError(t, kv.Delete(ctx, "somnia_history"))

			_, err = kv.Get(ctx, "somnia_history")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestBoltRejectsSecondInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "somnia.db")

	first, err := NewBolt(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = first.Close() })

	_, err = NewBolt(path)
	assert.True(t, errors.Is(err, errSomniaRunning))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "sqlite"})
	assert.True(t, errors.Is(err, errUnknownDriver))
}
